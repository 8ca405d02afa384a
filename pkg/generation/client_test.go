package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/metrics"
)

// Shared across tests: promauto panics on duplicate registration.
var testMetrics = metrics.NewMetrics("generation_test")

func TestCompleteSuccess(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Please describe your symptoms."}},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL + "/v1", Model: "local-model"}, testMetrics)
	successesBefore := testutil.ToFloat64(testMetrics.GenerationRequests.WithLabelValues("success"))

	text, err := client.Complete(context.Background(), []Turn{
		{Role: "user", Content: "I have a headache"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Please describe your symptoms.", text)
	assert.Equal(t, successesBefore+1, testutil.ToFloat64(testMetrics.GenerationRequests.WithLabelValues("success")))

	// The system preamble comes first, followed by the transcript in order.
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, SystemPrompt, captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, defaultTemperature, captured.Temperature)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
}

func TestCompleteServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "model overloaded"},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL + "/v1", Model: "local-model"}, testMetrics)
	failuresBefore := testutil.ToFloat64(testMetrics.GenerationRequests.WithLabelValues("failure"))

	_, err := client.Complete(context.Background(), []Turn{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrGeneration))
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(testMetrics.GenerationRequests.WithLabelValues("failure")))
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	client := NewHTTPClient(Config{BaseURL: srv.URL + "/v1", Model: "local-model"}, testMetrics)

	_, err := client.Complete(context.Background(), []Turn{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrGeneration))
}

func TestCompleteTransportError(t *testing.T) {
	client := NewHTTPClient(Config{BaseURL: "http://127.0.0.1:0/v1", Model: "local-model"}, testMetrics)

	_, err := client.Complete(context.Background(), []Turn{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrGeneration))
}
