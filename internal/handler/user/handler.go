package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediassist/patient-api/internal/middleware"
	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/service/auth"
	"github.com/mediassist/patient-api/pkg/httputil"
)

// Handler exposes account self-management for the authenticated user.
type Handler struct {
	svc  *auth.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *auth.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	profile := r.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.PUT("/password", h.ChangePassword)
	}

	patient := r.Group("/profile/patient", h.auth.RequireRole(model.RolePatient))
	{
		patient.GET("", h.GetPatientProfile)
		patient.PUT("", h.UpdatePatientProfile)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	user, err := h.svc.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "profile retrieved", user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), actor.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "profile updated", user)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), actor.ID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "password changed", nil)
}

func (h *Handler) GetPatientProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	patient, err := h.svc.GetPatientProfile(c.Request.Context(), actor.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "patient profile retrieved", patient)
}

func (h *Handler) UpdatePatientProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	patient, err := h.svc.UpdatePatientProfile(c.Request.Context(), actor.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "patient profile updated", patient)
}
