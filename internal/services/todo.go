package services

import (
	"strings"

	"github.com/google/uuid"

	repos "github.com/yungbote/interviewhub-backend/internal/data/repos/prep"
	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
	"github.com/yungbote/interviewhub-backend/internal/pkg/apierr"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

// UpdateItemInput is a point update; nil fields are left untouched.
type UpdateItemInput struct {
	Status *prep.TodoStatus `json:"status,omitempty"`
	Text   *string          `json:"text,omitempty"`
}

type TodoService interface {
	GetChecklist(dbc dbctx.Context, sessionID uuid.UUID) (*prep.Checklist, error)
	UpdateItem(dbc dbctx.Context, sessionID uuid.UUID, itemID string, in UpdateItemInput) (*prep.TodoItem, error)
}

type todoService struct {
	repo    repos.SessionRepo
	limiter *KeyedLimiter
	log     *logger.Logger
}

func NewTodoService(repo repos.SessionRepo, limiter *KeyedLimiter, log *logger.Logger) TodoService {
	return &todoService{
		repo:    repo,
		limiter: limiter,
		log:     log.With("service", "TodoService"),
	}
}

func (s *todoService) GetChecklist(dbc dbctx.Context, sessionID uuid.UUID) (*prep.Checklist, error) {
	row, err := s.repo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.Newf(apierr.KindNotFound, "session %s not found", sessionID)
	}
	cl, err := row.DecodeChecklist()
	if err != nil {
		return nil, err
	}
	if cl == nil {
		return nil, apierr.Newf(apierr.KindInvalidState, "session %s has no checklist yet", sessionID)
	}
	return cl, nil
}

func (s *todoService) UpdateItem(dbc dbctx.Context, sessionID uuid.UUID, itemID string, in UpdateItemInput) (*prep.TodoItem, error) {
	key := sessionID.String()
	if !s.limiter.TryAcquire(key) {
		return nil, apierr.Newf(apierr.KindBusy, "session %s has an operation in flight", sessionID)
	}
	defer s.limiter.Release(key)

	row, err := s.repo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.Newf(apierr.KindNotFound, "session %s not found", sessionID)
	}

	cl, err := row.DecodeChecklist()
	if err != nil {
		return nil, err
	}
	updated, err := applyItemUpdate(cl, itemID, in)
	if err != nil {
		return nil, err
	}
	if err := row.SetChecklist(cl); err != nil {
		return nil, err
	}
	if err := s.repo.Save(dbc, row); err != nil {
		return nil, err
	}
	return updated, nil
}

// applyItemUpdate mutates one item of an already decoded checklist. It is the
// single path for item writes; the knowledge-test completion side effect goes
// through it too, under the same session lock.
func applyItemUpdate(cl *prep.Checklist, itemID string, in UpdateItemInput) (*prep.TodoItem, error) {
	if cl == nil {
		return nil, apierr.Newf(apierr.KindInvalidState, "no checklist has been generated yet")
	}
	item := cl.FindItem(itemID)
	if item == nil {
		return nil, apierr.Newf(apierr.KindNotFound, "checklist item %s not found", itemID)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apierr.Newf(apierr.KindInvalidState, "status must be %q or %q", prep.StatusTodo, prep.StatusDone)
		}
		item.Status = *in.Status
	}
	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return nil, apierr.Newf(apierr.KindValidation, "item text must not be empty")
		}
		item.Text = text
	}
	out := *item
	return &out, nil
}
