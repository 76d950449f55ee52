package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/interviewhub-backend/internal/http/response"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/services"
)

type TodoHandler struct {
	todos services.TodoService
}

func NewTodoHandler(todos services.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// GET /api/sessions/:id/todos
func (h *TodoHandler) GetChecklist(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	cl, err := h.todos.GetChecklist(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, cl)
}

// PATCH /api/sessions/:id/todos/:todoId
func (h *TodoHandler) UpdateItem(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	var req services.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	item, err := h.todos.UpdateItem(dbctx.Context{Ctx: c.Request.Context()}, id, c.Param("todoId"), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, item)
}
