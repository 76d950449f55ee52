package prep

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/interviewhub-backend/internal/domain/prep"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, row *types.Session) error
	// GetByID returns (nil, nil) when no session exists.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Session, error)
	Save(dbc dbctx.Context, row *types.Session) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, log *logger.Logger) SessionRepo {
	return &sessionRepo{
		db:  db,
		log: log.With("repo", "SessionRepo"),
	}
}

func (r *sessionRepo) handle(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *sessionRepo) Create(dbc dbctx.Context, row *types.Session) error {
	if row == nil {
		return errors.New("nil session")
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return r.handle(dbc).Create(row).Error
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil {
		return nil, errors.New("missing session id")
	}
	var row types.Session
	err := r.handle(dbc).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *sessionRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []*types.Session
	err := r.handle(dbc).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionRepo) Save(dbc dbctx.Context, row *types.Session) error {
	if row == nil || row.ID == uuid.Nil {
		return errors.New("nil or unsaved session")
	}
	row.UpdatedAt = time.Now().UTC()
	return r.handle(dbc).Save(row).Error
}

func (r *sessionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("missing session id")
	}
	res := r.handle(dbc).Delete(&types.Session{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
