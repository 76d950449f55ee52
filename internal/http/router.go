package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/interviewhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/interviewhub-backend/internal/http/middleware"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler    *httpH.HealthHandler
	SessionHandler   *httpH.SessionHandler
	TodoHandler      *httpH.TodoHandler
	InterviewHandler *httpH.InterviewHandler

	Tracing     bool
	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Sessions
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Create)
			api.GET("/sessions", cfg.SessionHandler.List)
			api.GET("/sessions/:id", cfg.SessionHandler.Get)
			api.DELETE("/sessions/:id", cfg.SessionHandler.Delete)
			api.POST("/sessions/:id/message", cfg.SessionHandler.SendMessage)
		}

		// Checklist items
		if cfg.TodoHandler != nil {
			api.GET("/sessions/:id/todos", cfg.TodoHandler.GetChecklist)
			api.PATCH("/sessions/:id/todos/:todoId", cfg.TodoHandler.UpdateItem)
		}

		// Knowledge tests
		if cfg.InterviewHandler != nil {
			api.POST("/sessions/:id/interview/start", cfg.InterviewHandler.Start)
			api.GET("/sessions/:id/interview/:todoId", cfg.InterviewHandler.Get)
			api.POST("/sessions/:id/interview/:todoId/answer", cfg.InterviewHandler.Answer)
		}
	}

	return r
}
