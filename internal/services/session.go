package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/interviewhub-backend/internal/checklist"
	repos "github.com/yungbote/interviewhub-backend/internal/data/repos/prep"
	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
	"github.com/yungbote/interviewhub-backend/internal/gateway"
	"github.com/yungbote/interviewhub-backend/internal/pkg/apierr"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

// readyMessage is the assistant turn that announces a fresh checklist.
const readyMessage = "Perfect! I've gathered enough information. I've put together your personalized preparation checklist - you can see it on the right. Feel free to ask me anything as you work through it!"

// SendMessageResult is what one conversational turn produced.
type SendMessageResult struct {
	Reply              prep.Message      `json:"message"`
	Messages           []prep.Message    `json:"messages"`
	State              prep.SessionState `json:"state"`
	Checklist          *prep.Checklist   `json:"checklist,omitempty"`
	ChecklistGenerated bool              `json:"checklist_generated"`
}

type SessionService interface {
	Create(dbc dbctx.Context, goalText string) (*prep.Session, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*prep.Session, error)
	List(dbc dbctx.Context, limit, offset int) ([]*prep.Session, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// SendMessage runs one turn of the intake/gathering/ready state machine.
	SendMessage(dbc dbctx.Context, id uuid.UUID, content string) (*SendMessageResult, error)
}

type sessionService struct {
	repo    repos.SessionRepo
	gw      gateway.Gateway
	limiter *KeyedLimiter
	policy  IntakePolicy
	log     *logger.Logger
}

func NewSessionService(repo repos.SessionRepo, gw gateway.Gateway, limiter *KeyedLimiter, policy IntakePolicy, log *logger.Logger) SessionService {
	return &sessionService{
		repo:    repo,
		gw:      gw,
		limiter: limiter,
		policy:  policy,
		log:     log.With("service", "SessionService"),
	}
}

func (s *sessionService) Create(dbc dbctx.Context, goalText string) (*prep.Session, error) {
	goalText = strings.TrimSpace(goalText)
	if goalText == "" {
		return nil, apierr.Newf(apierr.KindValidation, "goal text must not be empty")
	}

	eventType, err := s.gw.Classify(dbc.Ctx, goalText)
	if err != nil {
		return nil, err
	}
	title, err := s.gw.GenerateTitle(dbc.Ctx, goalText, eventType)
	if err != nil {
		return nil, err
	}

	row := &prep.Session{
		EventType:    eventType,
		Title:        title,
		UserGoalText: goalText,
		State:        prep.StateGathering,
	}

	messages := []prep.Message{{Role: prep.RoleUser, Content: goalText}}
	reply, err := s.gw.Converse(dbc.Ctx, eventType, messages)
	if err != nil {
		s.log.Warn("intake follow-up failed, using canned prompt", "error", err)
		reply = followUpFallback(eventType)
	}
	messages = append(messages, prep.Message{Role: prep.RoleAssistant, Content: reply})

	if err := row.SetContext(ExtractContext(nil, goalText)); err != nil {
		return nil, err
	}
	if err := row.SetMessages(messages); err != nil {
		return nil, err
	}
	if err := row.SetInterviews(map[string]*prep.InterviewSession{}); err != nil {
		return nil, err
	}
	if err := s.repo.Create(dbc, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *sessionService) Get(dbc dbctx.Context, id uuid.UUID) (*prep.Session, error) {
	row, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.Newf(apierr.KindNotFound, "session %s not found", id)
	}
	return row, nil
}

func (s *sessionService) List(dbc dbctx.Context, limit, offset int) ([]*prep.Session, error) {
	return s.repo.List(dbc, limit, offset)
}

func (s *sessionService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	err := s.repo.Delete(dbc, id)
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.Newf(apierr.KindNotFound, "session %s not found", id)
	}
	return err
}

func (s *sessionService) SendMessage(dbc dbctx.Context, id uuid.UUID, content string) (*SendMessageResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierr.Newf(apierr.KindValidation, "message content must not be empty")
	}

	key := id.String()
	if !s.limiter.TryAcquire(key) {
		return nil, apierr.Newf(apierr.KindBusy, "session %s has an operation in flight", id)
	}
	defer s.limiter.Release(key)

	row, err := s.Get(dbc, id)
	if err != nil {
		return nil, err
	}

	messages := append(row.DecodeMessages(), prep.Message{Role: prep.RoleUser, Content: content})
	context := ExtractContext(row.DecodeContext(), content)

	switch row.State {
	case prep.StateReady:
		if isRegenerateIntent(content) {
			return s.regenerate(dbc, row, messages, context)
		}
		return s.converseTurn(dbc, row, messages, context)
	default:
		if s.policy.Sufficient(row.EventType, context, messages) {
			return s.generate(dbc, row, messages, context)
		}
		return s.converseTurn(dbc, row, messages, context)
	}
}

// converseTurn continues the dialogue without touching the checklist.
func (s *sessionService) converseTurn(dbc dbctx.Context, row *prep.Session, messages []prep.Message, context map[string]string) (*SendMessageResult, error) {
	reply, err := s.gw.Converse(dbc.Ctx, row.EventType, messages)
	if err != nil {
		return nil, err
	}
	assistant := prep.Message{Role: prep.RoleAssistant, Content: reply}
	messages = append(messages, assistant)

	if row.State == prep.StateIntake {
		row.State = prep.StateGathering
	}
	if err := row.SetMessages(messages); err != nil {
		return nil, err
	}
	if err := row.SetContext(context); err != nil {
		return nil, err
	}
	if err := s.repo.Save(dbc, row); err != nil {
		return nil, err
	}

	cl, _ := row.DecodeChecklist()
	return &SendMessageResult{Reply: assistant, Messages: messages, State: row.State, Checklist: cl}, nil
}

// generate runs the checklist generator with one repair retry. Any failure
// returns before the session row is written, so a failed generation leaves
// the transcript and state exactly as they were before the call.
func (s *sessionService) generate(dbc dbctx.Context, row *prep.Session, messages []prep.Message, context map[string]string) (*SendMessageResult, error) {
	cl, err := s.generateChecklist(dbc, row, context)
	if err != nil {
		return nil, err
	}

	assistant := prep.Message{Role: prep.RoleAssistant, Content: readyMessage}
	messages = append(messages, assistant)

	row.State = prep.StateReady
	if err := row.SetChecklist(cl); err != nil {
		return nil, err
	}
	if err := row.SetMessages(messages); err != nil {
		return nil, err
	}
	if err := row.SetContext(context); err != nil {
		return nil, err
	}
	if err := s.repo.Save(dbc, row); err != nil {
		return nil, err
	}
	return &SendMessageResult{Reply: assistant, Messages: messages, State: row.State, Checklist: cl, ChecklistGenerated: true}, nil
}

// regenerate rebuilds the checklist on explicit request, carrying forward the
// done status of items whose text survives the rebuild.
func (s *sessionService) regenerate(dbc dbctx.Context, row *prep.Session, messages []prep.Message, context map[string]string) (*SendMessageResult, error) {
	oldList, err := row.DecodeChecklist()
	if err != nil {
		return nil, err
	}

	newList, err := s.generateChecklist(dbc, row, context)
	if err != nil {
		return nil, err
	}
	carried := checklist.MergeCarryForward(oldList, newList)
	s.log.Info("checklist regenerated", "session_id", row.ID, "carried_done", carried)

	replyText := "Done! I've rebuilt your checklist with the latest details. Items you'd already completed stay checked off."
	assistant := prep.Message{Role: prep.RoleAssistant, Content: replyText}
	messages = append(messages, assistant)

	if err := row.SetChecklist(newList); err != nil {
		return nil, err
	}
	// Item ids are re-minted on regeneration, so knowledge tests keyed by the
	// old ids no longer point at anything.
	interviews := row.DecodeInterviews()
	for todoID := range interviews {
		if newList.FindItem(todoID) == nil {
			delete(interviews, todoID)
		}
	}
	if err := row.SetInterviews(interviews); err != nil {
		return nil, err
	}
	if err := row.SetMessages(messages); err != nil {
		return nil, err
	}
	if err := row.SetContext(context); err != nil {
		return nil, err
	}
	if err := s.repo.Save(dbc, row); err != nil {
		return nil, err
	}
	return &SendMessageResult{Reply: assistant, Messages: messages, State: row.State, Checklist: newList, ChecklistGenerated: true}, nil
}

func (s *sessionService) generateChecklist(dbc dbctx.Context, row *prep.Session, context map[string]string) (*prep.Checklist, error) {
	raw, err := s.gw.GenerateChecklist(dbc.Ctx, row.EventType, row.UserGoalText, context, "")
	if err != nil {
		return nil, err
	}
	cl, warnings, err := checklist.Parse(raw, row.EventType, row.Title)
	if err != nil && checklist.Repairable(err) {
		hint := fmt.Sprintf("Your previous response was rejected: %v. Respond with only the JSON object, no prose or code fences.", err)
		s.log.Warn("checklist output rejected, retrying with repair hint", "session_id", row.ID, "error", err)
		raw, err = s.gw.GenerateChecklist(dbc.Ctx, row.EventType, row.UserGoalText, context, hint)
		if err != nil {
			return nil, err
		}
		cl, warnings, err = checklist.Parse(raw, row.EventType, row.Title)
	}
	if err != nil {
		return nil, apierr.New(apierr.KindValidation, fmt.Errorf("checklist generation produced unusable output: %w", err))
	}
	for _, w := range warnings {
		s.log.Warn("checklist validation", "session_id", row.ID, "warning", w)
	}
	return cl, nil
}

var regenerateKeywords = []string{"regenerate", "rebuild the checklist", "redo the checklist", "new checklist", "update the checklist", "refresh the checklist"}

func isRegenerateIntent(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range regenerateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func followUpFallback(eventType prep.EventType) string {
	switch eventType {
	case prep.EventInterview:
		return "To tailor your prep plan, could you share the job description, the company, and the interview format you're expecting?"
	case prep.EventPresentation:
		return "To tailor your prep plan, could you tell me who the audience is and what outcome you want from the presentation?"
	case prep.EventPerformanceReview:
		return "To tailor your prep plan, could you tell me what kind of review this is and what you want to get out of it?"
	case prep.EventNegotiation:
		return "To tailor your prep plan, could you tell me what you're negotiating and what outcome you're aiming for?"
	default:
		return "To tailor your prep plan, could you tell me a bit more about the event and what's at stake?"
	}
}
