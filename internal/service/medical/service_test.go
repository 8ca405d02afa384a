package medical

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediassist/patient-api/internal/model"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
)

type fakeHistoryRepo struct {
	byPatient map[uuid.UUID]*model.MedicalHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, h *model.MedicalHistory) error {
	r.byPatient[h.PatientID] = h
	return nil
}

func (r *fakeHistoryRepo) GetByPatient(_ context.Context, patientID uuid.UUID) (*model.MedicalHistory, error) {
	h, ok := r.byPatient[patientID]
	if !ok {
		return nil, apperrors.NotFound("medical history")
	}
	cp := *h
	return &cp, nil
}

func (r *fakeHistoryRepo) Update(_ context.Context, h *model.MedicalHistory) error {
	stored, ok := r.byPatient[h.PatientID]
	if !ok {
		return apperrors.NotFound("medical history")
	}
	*stored = *h
	return nil
}

type fakePatientRepo struct {
	ids map[uuid.UUID]bool
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.ids[p.ID] = true
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if !r.ids[id] {
		return nil, apperrors.NotFound("patient")
	}
	return &model.Patient{ID: id}, nil
}

func (r *fakePatientRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.ids[id], nil
}

func (r *fakePatientRepo) Update(_ context.Context, _ *model.Patient) error { return nil }

func newService(patientID uuid.UUID) (*Service, *fakeHistoryRepo) {
	histories := &fakeHistoryRepo{byPatient: map[uuid.UUID]*model.MedicalHistory{
		patientID: {ID: uuid.New(), PatientID: patientID, Allergies: "penicillin"},
	}}
	patients := &fakePatientRepo{ids: map[uuid.UUID]bool{patientID: true}}
	return NewService(histories, patients), histories
}

func TestGetOwn(t *testing.T) {
	patientID := uuid.New()
	svc, _ := newService(patientID)

	history, err := svc.GetOwn(context.Background(), patientID)
	require.NoError(t, err)
	assert.Equal(t, "penicillin", history.Allergies)

	_, err = svc.GetOwn(context.Background(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestGetByPatient(t *testing.T) {
	patientID := uuid.New()
	svc, _ := newService(patientID)

	t.Run("doctor may read", func(t *testing.T) {
		doctor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
		history, err := svc.GetByPatient(context.Background(), patientID, doctor)
		require.NoError(t, err)
		assert.Equal(t, patientID, history.PatientID)
	})

	t.Run("patient may not read others", func(t *testing.T) {
		patient := &model.Actor{ID: uuid.New(), Role: model.RolePatient}
		_, err := svc.GetByPatient(context.Background(), patientID, patient)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("unknown patient", func(t *testing.T) {
		doctor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}
		_, err := svc.GetByPatient(context.Background(), uuid.New(), doctor)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestUpdate(t *testing.T) {
	patientID := uuid.New()
	svc, histories := newService(patientID)

	medications := "ibuprofen 400mg"
	updated, err := svc.Update(context.Background(), patientID, &model.UpdateMedicalHistoryRequest{
		Medications: &medications,
	})
	require.NoError(t, err)

	// untouched fields survive a partial update
	assert.Equal(t, "penicillin", updated.Allergies)
	assert.Equal(t, medications, updated.Medications)
	assert.Equal(t, medications, histories.byPatient[patientID].Medications)
}

func TestUpdateForPatient(t *testing.T) {
	patientID := uuid.New()

	t.Run("doctor records findings", func(t *testing.T) {
		svc, histories := newService(patientID)
		doctor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}

		conditions := "hypertension"
		updated, err := svc.UpdateForPatient(context.Background(), patientID, doctor, &model.UpdateMedicalHistoryRequest{
			PreexistingConditions: &conditions,
		})
		require.NoError(t, err)
		assert.Equal(t, conditions, updated.PreexistingConditions)
		assert.Equal(t, "penicillin", updated.Allergies)
		assert.Equal(t, conditions, histories.byPatient[patientID].PreexistingConditions)
	})

	t.Run("patient may not write another record", func(t *testing.T) {
		svc, _ := newService(patientID)
		patient := &model.Actor{ID: uuid.New(), Role: model.RolePatient}

		allergies := "latex"
		_, err := svc.UpdateForPatient(context.Background(), patientID, patient, &model.UpdateMedicalHistoryRequest{
			Allergies: &allergies,
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("unknown patient", func(t *testing.T) {
		svc, _ := newService(patientID)
		doctor := &model.Actor{ID: uuid.New(), Role: model.RoleDoctor}

		allergies := "latex"
		_, err := svc.UpdateForPatient(context.Background(), uuid.New(), doctor, &model.UpdateMedicalHistoryRequest{
			Allergies: &allergies,
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}
