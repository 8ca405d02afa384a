package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/middleware"
	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/service/appointment"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/httputil"
)

type Handler struct {
	svc  *appointment.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *appointment.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.auth.RequireRole(model.RolePatient), h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	apt, err := h.svc.Create(c.Request.Context(), actor.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "appointment requested", apt)
}

func (h *Handler) List(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	appointments, err := h.svc.ListForActor(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "appointments retrieved", appointments)
}

func (h *Handler) Get(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.svc.Get(c.Request.Context(), id, actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "appointment retrieved", apt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	apt, err := h.svc.UpdateStatus(c.Request.Context(), id, actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "appointment updated", apt)
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid appointment id", map[string]string{"id": "must be a valid UUID"})
	}
	return id, nil
}
