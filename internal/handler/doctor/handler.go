package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/middleware"
	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/service/doctor"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/httputil"
)

type Handler struct {
	svc  *doctor.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *doctor.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.List)
		doctors.GET("/:id", h.Get)
		doctors.PUT("/me/schedule", h.auth.RequireRole(model.RoleDoctor), h.UpdateSchedule)
	}
}

func (h *Handler) List(c *gin.Context) {
	profiles, err := h.svc.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "doctors retrieved", profiles)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor id", map[string]string{"id": "must be a valid UUID"}))
		return
	}

	profile, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "doctor retrieved", profile)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	updated, err := h.svc.UpdateSchedule(c.Request.Context(), actor.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "schedule updated", updated)
}
