package app

import (
	"gorm.io/gorm"

	prepRepos "github.com/yungbote/interviewhub-backend/internal/data/repos/prep"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

type Repos struct {
	Sessions prepRepos.SessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Sessions: prepRepos.NewSessionRepo(db, log),
	}
}
