package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/interviewhub-backend/internal/http/response"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type createSessionRequest struct {
	UserGoalText string `json:"user_goal_text"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("session id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.sessions.Create(dbctx.Context{Ctx: c.Request.Context()}, req.UserGoalText)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"session_id": row.ID,
		"event_type": row.EventType,
		"title":      row.Title,
		"state":      row.State,
		"messages":   row.DecodeMessages(),
	})
}

// GET /api/sessions
func (h *SessionHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	rows, err := h.sessions.List(dbctx.Context{Ctx: c.Request.Context()}, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"session_id": row.ID,
			"title":      row.Title,
			"event_type": row.EventType,
			"state":      row.State,
			"created_at": row.CreatedAt,
		})
	}
	response.RespondOK(c, gin.H{"sessions": out})
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	row, err := h.sessions.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	cl, err := row.DecodeChecklist()
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"session_id": row.ID,
		"event_type": row.EventType,
		"title":      row.Title,
		"state":      row.State,
		"messages":   row.DecodeMessages(),
		"checklist":  cl,
		"created_at": row.CreatedAt,
	})
}

// DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Delete(dbctx.Context{Ctx: c.Request.Context()}, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/sessions/:id/message
func (h *SessionHandler) SendMessage(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.sessions.SendMessage(dbctx.Context{Ctx: c.Request.Context()}, id, req.Content)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
