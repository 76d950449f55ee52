package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/interviewhub-backend/internal/http"
	httpH "github.com/yungbote/interviewhub-backend/internal/http/handlers"
	"github.com/yungbote/interviewhub-backend/internal/observability"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Session   *httpH.SessionHandler
	Todo      *httpH.TodoHandler
	Interview *httpH.InterviewHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Session:   httpH.NewSessionHandler(services.Sessions),
		Todo:      httpH.NewTodoHandler(services.Todos),
		Interview: httpH.NewInterviewHandler(services.Interviews),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:              log,
		HealthHandler:    handlers.Health,
		SessionHandler:   handlers.Session,
		TodoHandler:      handlers.Todo,
		InterviewHandler: handlers.Interview,
		Tracing:          observability.Enabled(),
		ServiceName:      cfg.ServiceName,
	})
}
