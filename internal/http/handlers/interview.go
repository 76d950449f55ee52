package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/interviewhub-backend/internal/http/response"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/services"
)

type InterviewHandler struct {
	interviews services.InterviewService
}

func NewInterviewHandler(interviews services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// TodoText is accepted for wire compatibility but the stored item text is
// authoritative for question seeding.
type startInterviewRequest struct {
	TodoID   string `json:"todo_id"`
	TodoText string `json:"todo_text"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// POST /api/sessions/:id/interview/start
func (h *InterviewHandler) Start(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	var req startInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.interviews.Start(dbctx.Context{Ctx: c.Request.Context()}, id, req.TodoID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/sessions/:id/interview/:todoId/answer
func (h *InterviewHandler) Answer(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.interviews.Answer(dbctx.Context{Ctx: c.Request.Context()}, id, c.Param("todoId"), req.Answer)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/sessions/:id/interview/:todoId
func (h *InterviewHandler) Get(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	iv, err := h.interviews.Get(dbctx.Context{Ctx: c.Request.Context()}, id, c.Param("todoId"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, iv)
}
