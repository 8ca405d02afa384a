package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mediassist/patient-api/pkg/circuitbreaker"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/metrics"
)

// SystemPrompt is the fixed medical-assistant persona prepended to every
// completion request.
const SystemPrompt = `You are a virtual medical assistant designed to help patients with preliminary consultations.
Your goal is to gather information about symptoms, provide general information about possible conditions,
and recommend when professional medical attention is needed.

IMPORTANT:
1. You must NOT provide definitive diagnoses.
2. You must ALWAYS clarify that your answers are orientative and do not replace consultation with a medical professional.
3. For severe or emergency symptoms, you must recommend seeking immediate medical attention.
4. Keep a professional but friendly and empathetic tone.
5. Ask for additional information when needed to better understand the patient's situation.`

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Client requests completions from a text-generation service.
type Client interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxFailures int
}

// HTTPClient calls any OpenAI-compatible /v1/chat/completions endpoint.
// Works with LM Studio, vLLM, LocalAI, OpenRouter and hosted providers.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	metrics    *metrics.Metrics
}

// NewHTTPClient builds an OpenAI-compatible generation client.
// BaseURL should include the /v1 prefix, e.g. "http://localhost:1234/v1".
// APIKey can be empty for local models that do not require authentication.
func NewHTTPClient(cfg Config, m *metrics.Metrics) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   strings.TrimSpace(cfg.Model),
		metrics: m,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "generation",
			MaxFailures: cfg.MaxFailures,
			Timeout:     30 * time.Second,
		}),
	}
}

// Complete prepends the system preamble and requests one completion. A single
// attempt is made per call; any transport or service failure is returned as a
// recoverable GenerationError.
func (c *HTTPClient) Complete(ctx context.Context, turns []Turn) (string, error) {
	timer := prometheus.NewTimer(c.metrics.GenerationLatency)
	defer timer.ObserveDuration()

	var text string
	err := c.breaker.Execute(func() error {
		var err error
		text, err = c.complete(ctx, turns)
		return err
	})
	if err != nil {
		c.metrics.GenerationRequests.WithLabelValues("failure").Inc()
		return "", apperrors.Generation(err)
	}
	c.metrics.GenerationRequests.WithLabelValues("success").Inc()
	return text, nil
}

func (c *HTTPClient) complete(ctx context.Context, turns []Turn) (string, error) {
	messages := make([]chatMessage, 0, len(turns)+1)
	messages = append(messages, chatMessage{Role: "system", Content: SystemPrompt})
	for _, t := range turns {
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("generation api error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("generation api error: %s", resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("generation decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from generation api")
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response from generation api")
	}
	return text, nil
}

// OpenAI-compatible request/response types.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
