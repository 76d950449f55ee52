package services

import (
	"fmt"

	"github.com/google/uuid"

	repos "github.com/yungbote/interviewhub-backend/internal/data/repos/prep"
	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
	"github.com/yungbote/interviewhub-backend/internal/gateway"
	"github.com/yungbote/interviewhub-backend/internal/pkg/apierr"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

// maxQuestionAttempts bounds the re-ask loop when the model repeats itself.
const maxQuestionAttempts = 3

// StartResult is the opening turn of a knowledge test.
type StartResult struct {
	Question       string `json:"question"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
}

// AnswerResult carries the feedback for the submitted answer and, unless the
// test just completed, the next question.
type AnswerResult struct {
	Feedback        string  `json:"feedback"`
	Question        string  `json:"question,omitempty"`
	QuestionNumber  int     `json:"question_number"`
	TotalQuestions  int     `json:"total_questions"`
	IsComplete      bool    `json:"is_complete"`
	Rating          float64 `json:"rating,omitempty"`
	Passed          bool    `json:"passed,omitempty"`
	OverallFeedback string  `json:"overall_feedback,omitempty"`
}

type InterviewService interface {
	// Start begins (or restarts) the knowledge test for one checklist item.
	Start(dbc dbctx.Context, sessionID uuid.UUID, todoID string) (*StartResult, error)
	Answer(dbc dbctx.Context, sessionID uuid.UUID, todoID, answer string) (*AnswerResult, error)
	Get(dbc dbctx.Context, sessionID uuid.UUID, todoID string) (*prep.InterviewSession, error)
}

type interviewService struct {
	repo    repos.SessionRepo
	gw      gateway.Gateway
	limiter *KeyedLimiter
	deduper QuestionDeduper
	log     *logger.Logger
}

func NewInterviewService(repo repos.SessionRepo, gw gateway.Gateway, limiter *KeyedLimiter, deduper QuestionDeduper, log *logger.Logger) InterviewService {
	return &interviewService{
		repo:    repo,
		gw:      gw,
		limiter: limiter,
		deduper: deduper,
		log:     log.With("service", "InterviewService"),
	}
}

// requireTodoID rejects ids that are not canonical UUIDs. Checklists persisted
// before id re-minting can carry model-invented ids; the fix is regeneration.
func requireTodoID(todoID string) error {
	if len(todoID) != 36 {
		return invalidTodoID(todoID)
	}
	if _, err := uuid.Parse(todoID); err != nil {
		return invalidTodoID(todoID)
	}
	return nil
}

func invalidTodoID(todoID string) error {
	return apierr.Newf(apierr.KindInvalidID, "item id %q is not a valid identifier; regenerate the checklist to get stable item ids", todoID)
}

func (s *interviewService) Start(dbc dbctx.Context, sessionID uuid.UUID, todoID string) (*StartResult, error) {
	if err := requireTodoID(todoID); err != nil {
		return nil, err
	}
	key := sessionID.String()
	if !s.limiter.TryAcquire(key) {
		return nil, apierr.Newf(apierr.KindBusy, "session %s has an operation in flight", sessionID)
	}
	defer s.limiter.Release(key)

	row, _, item, err := s.loadItem(dbc, sessionID, todoID)
	if err != nil {
		return nil, err
	}
	if item.GroupKey != prep.GroupSkills {
		return nil, apierr.Newf(apierr.KindValidation, "knowledge tests are only available for %s items", prep.GroupLabels[prep.GroupSkills])
	}

	question, err := s.gw.GenerateInterviewQuestion(dbc.Ctx, item.Text, nil)
	if err != nil {
		return nil, err
	}

	iv := &prep.InterviewSession{
		TodoID:          todoID,
		TodoText:        item.Text,
		Questions:       []string{question},
		CurrentQuestion: 1,
		TotalQuestions:  prep.InterviewTotalQuestions,
		History:         []prep.Message{{Role: prep.RoleAssistant, Content: question}},
		Status:          prep.InterviewInProgress,
	}

	// A fresh start replaces whatever was there, finished or not.
	interviews := row.DecodeInterviews()
	interviews[todoID] = iv
	if err := row.SetInterviews(interviews); err != nil {
		return nil, err
	}
	if err := s.repo.Save(dbc, row); err != nil {
		return nil, err
	}
	return &StartResult{Question: question, QuestionNumber: 1, TotalQuestions: iv.TotalQuestions}, nil
}

func (s *interviewService) Answer(dbc dbctx.Context, sessionID uuid.UUID, todoID, answer string) (*AnswerResult, error) {
	if err := requireTodoID(todoID); err != nil {
		return nil, err
	}
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
	interviews := row.DecodeInterviews()
	iv := interviews[todoID]
	if iv == nil {
		return nil, apierr.Newf(apierr.KindNotFound, "no knowledge test in progress for item %s", todoID)
	}
	if iv.Complete() {
		return nil, apierr.Newf(apierr.KindInvalidState, "knowledge test for item %s is already completed", todoID)
	}
	// The question cursor drives everything below; a row that lost it (bad
	// migration, hand-edited JSONB) must not panic the request.
	if iv.CurrentQuestion < 1 || iv.CurrentQuestion > len(iv.Questions) {
		return nil, apierr.Newf(apierr.KindInvalidState, "knowledge test for item %s is in an unusable state; restart it", todoID)
	}

	current := iv.Questions[iv.CurrentQuestion-1]
	iv.History = append(iv.History, prep.Message{Role: prep.RoleUser, Content: answer})

	eval, err := s.gw.EvaluateAnswer(dbc.Ctx, iv.TodoText, current, answer)
	if err != nil {
		return nil, err
	}
	iv.Verdicts = append(iv.Verdicts, eval.Correctness)
	iv.History = append(iv.History, prep.Message{Role: prep.RoleAssistant, Content: eval.Feedback})

	out := &AnswerResult{
		Feedback:       eval.Feedback,
		TotalQuestions: iv.TotalQuestions,
	}

	if iv.CurrentQuestion >= iv.TotalQuestions {
		if err := s.finish(dbc, row, iv, out); err != nil {
			return nil, err
		}
	} else {
		question, err := s.nextQuestion(dbc, iv)
		if err != nil {
			return nil, err
		}
		iv.Questions = append(iv.Questions, question)
		iv.CurrentQuestion++
		iv.History = append(iv.History, prep.Message{Role: prep.RoleAssistant, Content: question})
		out.Question = question
		out.QuestionNumber = iv.CurrentQuestion
	}

	interviews[todoID] = iv
	if err := row.SetInterviews(interviews); err != nil {
		return nil, err
	}
	if err := s.repo.Save(dbc, row); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *interviewService) Get(dbc dbctx.Context, sessionID uuid.UUID, todoID string) (*prep.InterviewSession, error) {
	if err := requireTodoID(todoID); err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.Newf(apierr.KindNotFound, "session %s not found", sessionID)
	}
	iv := row.DecodeInterviews()[todoID]
	if iv == nil {
		return nil, apierr.Newf(apierr.KindNotFound, "no knowledge test exists for item %s", todoID)
	}
	return iv, nil
}

// nextQuestion asks for a fresh question, retrying a bounded number of times
// when the model repeats one already asked.
func (s *interviewService) nextQuestion(dbc dbctx.Context, iv *prep.InterviewSession) (string, error) {
	var question string
	var err error
	for attempt := 0; attempt < maxQuestionAttempts; attempt++ {
		question, err = s.gw.GenerateInterviewQuestion(dbc.Ctx, iv.TodoText, iv.Questions)
		if err != nil {
			return "", err
		}
		if !s.deduper.Seen(question, iv.Questions) {
			return question, nil
		}
		s.log.Warn("duplicate interview question, retrying", "todo_id", iv.TodoID, "attempt", attempt+1)
	}
	return fmt.Sprintf("Can you explain a different aspect of %s that we haven't covered yet?", iv.TodoText), nil
}

// finish closes the test: it pulls the summary, recomputes pass/fail from the
// rating threshold, and marks the linked item done at most once.
func (s *interviewService) finish(dbc dbctx.Context, row *prep.Session, iv *prep.InterviewSession, out *AnswerResult) error {
	summary, err := s.gw.SummarizeInterview(dbc.Ctx, iv.TodoText, iv.History, iv.Verdicts)
	if err != nil {
		return err
	}

	iv.Status = prep.InterviewCompleted
	iv.Rating = summary.Rating
	iv.Passed = summary.Rating >= prep.InterviewPassThreshold
	iv.OverallFeedback = summary.OverallFeedback

	out.IsComplete = true
	out.QuestionNumber = iv.TotalQuestions
	out.Rating = iv.Rating
	out.Passed = iv.Passed
	out.OverallFeedback = iv.OverallFeedback

	if iv.Passed && !iv.CompletionApplied {
		cl, err := row.DecodeChecklist()
		if err != nil {
			return err
		}
		done := prep.StatusDone
		if _, err := applyItemUpdate(cl, iv.TodoID, UpdateItemInput{Status: &done}); err != nil {
			// The item may have been removed by a regeneration race; the
			// test result still stands.
			s.log.Warn("could not mark item done after passed test", "todo_id", iv.TodoID, "error", err)
		} else {
			if err := row.SetChecklist(cl); err != nil {
				return err
			}
			iv.CompletionApplied = true
		}
	}
	return nil
}

func (s *interviewService) loadItem(dbc dbctx.Context, sessionID uuid.UUID, todoID string) (*prep.Session, *prep.Checklist, *prep.TodoItem, error) {
	row, err := s.repo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if row == nil {
		return nil, nil, nil, apierr.Newf(apierr.KindNotFound, "session %s not found", sessionID)
	}
	cl, err := row.DecodeChecklist()
	if err != nil {
		return nil, nil, nil, err
	}
	if cl == nil {
		return nil, nil, nil, apierr.Newf(apierr.KindInvalidState, "session %s has no checklist yet", sessionID)
	}
	item := cl.FindItem(todoID)
	if item == nil {
		return nil, nil, nil, apierr.Newf(apierr.KindNotFound, "checklist item %s not found", todoID)
	}
	return row, cl, item, nil
}
