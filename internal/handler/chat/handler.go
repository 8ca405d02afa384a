package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediassist/patient-api/internal/middleware"
	"github.com/mediassist/patient-api/internal/model"
	"github.com/mediassist/patient-api/internal/service/chat"
	apperrors "github.com/mediassist/patient-api/pkg/errors"
	"github.com/mediassist/patient-api/pkg/httputil"
)

// Handler exposes AI consultation sessions. All routes are patient-only.
type Handler struct {
	svc  *chat.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *chat.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	chats := r.Group("/chats", h.auth.RequireRole(model.RolePatient))
	{
		chats.POST("", h.Create)
		chats.GET("", h.List)
		chats.GET("/:id", h.Get)
		chats.PATCH("/:id/title", h.UpdateTitle)
		chats.DELETE("/:id", h.Delete)
		chats.POST("/:id/messages", h.SendMessage)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var req model.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	session, err := h.svc.CreateChat(c.Request.Context(), actor.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "chat created", session)
}

func (h *Handler) List(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	sessions, err := h.svc.ListChats(c.Request.Context(), actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "chats retrieved", sessions)
}

func (h *Handler) Get(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	detail, err := h.svc.GetChat(c.Request.Context(), id, actor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "chat retrieved", detail)
}

func (h *Handler) UpdateTitle(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateChatTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	session, err := h.svc.UpdateTitle(c.Request.Context(), id, actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "chat title updated", session)
}

func (h *Handler) Delete(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.DeleteChat(c.Request.Context(), id, actor); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "chat deleted", nil)
}

// SendMessage returns 200 even when the AI reply could not be generated; the
// result body carries the partial-failure flag.
func (h *Handler) SendMessage(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := parseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindingError(c, err)
		return
	}

	result, err := h.svc.SendMessage(c.Request.Context(), id, actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	message := "message sent"
	if result.AIFailed {
		message = "message saved but the assistant could not respond"
	}
	httputil.RespondWithSuccess(c, http.StatusOK, message, result)
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid chat id", map[string]string{"id": "must be a valid UUID"})
	}
	return id, nil
}
