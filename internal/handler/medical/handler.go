package medical

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/middleware"
	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/service/medical"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/httputil"
)

type Handler struct {
	svc  *medical.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *medical.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	own := r.Group("/medical-history", h.auth.RequireRole(model.RolePatient))
	{
		own.GET("", h.GetOwn)
		own.PUT("", h.Update)
	}

	byPatient := r.Group("/patients/:id/medical-history", h.auth.RequireRole(model.RoleDoctor))
	{
		byPatient.GET("", h.GetByPatient)
		byPatient.PUT("", h.UpdateByPatient)
	}
}

func (h *Handler) GetOwn(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	history, err := h.svc.GetOwn(c.Request.Context(), actor.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "medical history retrieved", history)
}

func (h *Handler) Update(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.UpdateMedicalHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	history, err := h.svc.Update(c.Request.Context(), actor.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "medical history updated", history)
}

func (h *Handler) GetByPatient(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid patient id", map[string]string{"id": "must be a valid UUID"}))
		return
	}

	history, err := h.svc.GetByPatient(c.Request.Context(), patientID, actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "medical history retrieved", history)
}

// UpdateByPatient is the doctor-side write path, used to record findings
// after a consultation.
func (h *Handler) UpdateByPatient(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid patient id", map[string]string{"id": "must be a valid UUID"}))
		return
	}

	var req model.UpdateMedicalHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	history, err := h.svc.UpdateForPatient(c.Request.Context(), patientID, actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "medical history updated", history)
}
