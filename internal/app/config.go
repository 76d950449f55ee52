package app

import (
	"github.com/yungbote/interviewhub-backend/internal/pkg/envutil"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("SERVICE_NAME", "interviewhub-backend"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
	}
	log.Info("Config loaded", "port", cfg.Port, "environment", cfg.Environment)
	return cfg
}
