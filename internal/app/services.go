package app

import (
	"github.com/yungbote/interviewhub-backend/internal/clients/openai"
	"github.com/yungbote/interviewhub-backend/internal/gateway"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
	"github.com/yungbote/interviewhub-backend/internal/services"
)

type Services struct {
	Gateway    gateway.Gateway
	Sessions   services.SessionService
	Todos      services.TodoService
	Interviews services.InterviewService
}

func wireServices(log *logger.Logger, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	client, err := openai.NewClient(log)
	if err != nil {
		return Services{}, err
	}
	gw := gateway.New(log, client, gateway.LoadModelChains(log), gateway.CallTimeout())

	limiter := services.NewKeyedLimiter()
	policy := services.NewSlotIntakePolicy()
	deduper := services.NewNormalizedDeduper()

	return Services{
		Gateway:    gw,
		Sessions:   services.NewSessionService(repos.Sessions, gw, limiter, policy, log),
		Todos:      services.NewTodoService(repos.Sessions, limiter, log),
		Interviews: services.NewInterviewService(repos.Sessions, gw, limiter, deduper, log),
	}, nil
}
