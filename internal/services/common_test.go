package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
	"github.com/yungbote/interviewhub-backend/internal/gateway"
	"github.com/yungbote/interviewhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

// memRepo is an in-memory SessionRepo backed by JSON copies, so services see
// the same decode/encode round trip the database gives them.
type memRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID][]byte

	// beforeSave, when set, runs at the top of Save while the calling
	// service still holds its session lock. Lets tests park a write mid-flight.
	beforeSave func()
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[uuid.UUID][]byte{}}
}

func (r *memRepo) Create(_ dbctx.Context, row *prep.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return err
	}
	r.rows[row.ID] = raw
	return nil
}

func (r *memRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*prep.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	var row prep.Session
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *memRepo) List(_ dbctx.Context, _, _ int) ([]*prep.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*prep.Session, 0, len(r.rows))
	for _, raw := range r.rows {
		var row prep.Session
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	return out, nil
}

func (r *memRepo) Save(_ dbctx.Context, row *prep.Session) error {
	if r.beforeSave != nil {
		r.beforeSave()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[row.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return err
	}
	r.rows[row.ID] = raw
	return nil
}

func (r *memRepo) Delete(_ dbctx.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

// fakeGateway answers from function fields; unset fields return fixed
// defaults so each test only scripts the calls it cares about.
type fakeGateway struct {
	classifyFn  func(goal string) (prep.EventType, error)
	converseFn  func(eventType prep.EventType, messages []prep.Message) (string, error)
	checklistFn func(repairHint string) (string, error)
	questionFn  func(topic string, asked []string) (string, error)
	evaluateFn  func(question, answer string) (gateway.Evaluation, error)
	summaryFn   func(verdicts []prep.AnswerVerdict) (gateway.Summary, error)

	checklistCalls int
	questionCalls  int
}

func (g *fakeGateway) Classify(_ context.Context, goal string) (prep.EventType, error) {
	if g.classifyFn != nil {
		return g.classifyFn(goal)
	}
	return prep.EventInterview, nil
}

func (g *fakeGateway) GenerateTitle(_ context.Context, goal string, _ prep.EventType) (string, error) {
	return "Prep: " + goal, nil
}

func (g *fakeGateway) Converse(_ context.Context, eventType prep.EventType, messages []prep.Message) (string, error) {
	if g.converseFn != nil {
		return g.converseFn(eventType, messages)
	}
	return "Tell me more about the event.", nil
}

func (g *fakeGateway) GenerateChecklist(_ context.Context, _ prep.EventType, _ string, _ map[string]string, repairHint string) (string, error) {
	g.checklistCalls++
	if g.checklistFn != nil {
		return g.checklistFn(repairHint)
	}
	return validChecklistJSON(), nil
}

func (g *fakeGateway) GenerateInterviewQuestion(_ context.Context, topic string, asked []string) (string, error) {
	g.questionCalls++
	if g.questionFn != nil {
		return g.questionFn(topic, asked)
	}
	return fmt.Sprintf("Question %d about %s?", len(asked)+1, topic), nil
}

func (g *fakeGateway) EvaluateAnswer(_ context.Context, _, question, answer string) (gateway.Evaluation, error) {
	if g.evaluateFn != nil {
		return g.evaluateFn(question, answer)
	}
	return gateway.Evaluation{Feedback: "Good answer.", Correctness: prep.VerdictCorrect}, nil
}

func (g *fakeGateway) SummarizeInterview(_ context.Context, _ string, _ []prep.Message, verdicts []prep.AnswerVerdict) (gateway.Summary, error) {
	if g.summaryFn != nil {
		return g.summaryFn(verdicts)
	}
	rating := prep.RateVerdicts(verdicts)
	return gateway.Summary{Rating: rating, Passed: rating >= prep.InterviewPassThreshold, OverallFeedback: "Solid grasp of the topic."}, nil
}

func validChecklistJSON() string {
	return `{
	  "title": "Frontend Interview Prep",
	  "assumptions": ["Interview is within two weeks"],
	  "groups": [
	    {"key": "context", "items": [{"text": "Research the company's product"}]},
	    {"key": "skills", "items": [{"text": "Review React rendering model", "priority": "high"}, {"text": "Practice CSS layout questions"}]},
	    {"key": "evidence", "items": [{"text": "Pick two projects to walk through"}]},
	    {"key": "delivery", "items": [{"text": "Do one mock interview"}]},
	    {"key": "logistics", "items": [{"text": "Confirm the interview time"}]}
	  ],
	  "next_3_actions": ["Read the job description again", "Review React rendering model", "Schedule a mock"]
	}`
}

type fixture struct {
	repo       *memRepo
	gw         *fakeGateway
	limiter    *KeyedLimiter
	sessions   SessionService
	todos      TodoService
	interviews InterviewService
}

func newFixture(gw *fakeGateway) *fixture {
	log := logger.NewNop()
	repo := newMemRepo()
	limiter := NewKeyedLimiter()
	return &fixture{
		repo:       repo,
		gw:         gw,
		limiter:    limiter,
		sessions:   NewSessionService(repo, gw, limiter, NewSlotIntakePolicy(), log),
		todos:      NewTodoService(repo, limiter, log),
		interviews: NewInterviewService(repo, gw, limiter, NewNormalizedDeduper(), log),
	}
}

func testDBC() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

// readySession creates a session and pushes it to ready by pasting a long
// job description, returning the session row with its generated checklist.
func readySession(t *testing.T, f *fixture) *prep.Session {
	t.Helper()
	row, err := f.sessions.Create(testDBC(), "I have a frontend interview coming up")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := f.sessions.SendMessage(testDBC(), row.ID, longJobDescription())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !res.ChecklistGenerated {
		t.Fatalf("expected checklist generation, state=%s", res.State)
	}
	out, err := f.sessions.Get(testDBC(), row.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return out
}

func longJobDescription() string {
	s := "Here is the job description: "
	for i := 0; i < 20; i++ {
		s += "we are looking for a frontend engineer with strong React and TypeScript experience "
	}
	return s
}

func skillsItemID(t *testing.T, cl *prep.Checklist) string {
	t.Helper()
	for _, g := range cl.Groups {
		if g.Key == prep.GroupSkills && len(g.Items) > 0 {
			return g.Items[0].ID
		}
	}
	t.Fatal("no skills item in checklist")
	return ""
}

func findGroup(cl *prep.Checklist, key prep.GroupKey) *prep.ChecklistGroup {
	for i := range cl.Groups {
		if cl.Groups[i].Key == key {
			return &cl.Groups[i]
		}
	}
	return nil
}
