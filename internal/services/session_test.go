package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
	"github.com/yungbote/interviewhub-backend/internal/pkg/apierr"
)

func TestCreateSession(t *testing.T) {
	f := newFixture(&fakeGateway{})

	row, err := f.sessions.Create(testDBC(), "prep for my Google interview next week")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.EventType != prep.EventInterview {
		t.Fatalf("event type = %s", row.EventType)
	}
	if row.State != prep.StateGathering {
		t.Fatalf("state = %s", row.State)
	}
	msgs := row.DecodeMessages()
	if len(msgs) != 2 || msgs[0].Role != prep.RoleUser || msgs[1].Role != prep.RoleAssistant {
		t.Fatalf("transcript = %+v", msgs)
	}
	if got := row.DecodeContext()["company"]; got != "google" {
		t.Fatalf("company slot = %q", got)
	}
}

func TestCreateSessionEmptyGoal(t *testing.T) {
	f := newFixture(&fakeGateway{})
	if _, err := f.sessions.Create(testDBC(), "   "); apierr.KindOf(err) != apierr.KindValidation {
		t.Fatalf("err = %v", err)
	}
}

func TestSendMessageAsksFollowUpBeforeGenerating(t *testing.T) {
	f := newFixture(&fakeGateway{})
	row, err := f.sessions.Create(testDBC(), "I have an interview soon")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A short answer with no new slots keeps the session gathering.
	res, err := f.sessions.SendMessage(testDBC(), row.ID, "it's a tech role")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.ChecklistGenerated || res.State != prep.StateGathering {
		t.Fatalf("generated too early: state=%s", res.State)
	}
	if f.gw.checklistCalls != 0 {
		t.Fatalf("checklist generator called %d times", f.gw.checklistCalls)
	}

	// Pasting the job description supplies enough context.
	res, err = f.sessions.SendMessage(testDBC(), row.ID, longJobDescription())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !res.ChecklistGenerated || res.State != prep.StateReady {
		t.Fatalf("expected generation: state=%s", res.State)
	}
	if res.Checklist == nil || len(res.Checklist.Groups) != 5 {
		t.Fatalf("checklist = %+v", res.Checklist)
	}
	if len(res.Checklist.Assumptions) == 0 {
		t.Fatal("checklist should carry at least one assumption")
	}
	if !strings.Contains(res.Reply.Content, "checklist") {
		t.Fatalf("ready reply = %q", res.Reply.Content)
	}
	if len(res.Messages) == 0 || res.Messages[len(res.Messages)-1] != res.Reply {
		t.Fatal("full transcript should end with the assistant reply")
	}
}

func TestSendMessageRepairRetry(t *testing.T) {
	gw := &fakeGateway{}
	gw.checklistFn = func(repairHint string) (string, error) {
		if repairHint == "" {
			return "Sure! Here's your checklist: {broken", nil
		}
		return validChecklistJSON(), nil
	}
	f := newFixture(gw)
	row, _ := f.sessions.Create(testDBC(), "interview prep")

	res, err := f.sessions.SendMessage(testDBC(), row.ID, longJobDescription())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !res.ChecklistGenerated {
		t.Fatal("repair retry should have recovered")
	}
	if gw.checklistCalls != 2 {
		t.Fatalf("generator calls = %d, want 2", gw.checklistCalls)
	}
}

func TestSendMessageGenerationFailureLeavesSessionUntouched(t *testing.T) {
	gw := &fakeGateway{}
	gw.checklistFn = func(string) (string, error) {
		return "", apierr.Newf(apierr.KindUpstreamUnavailable, "all models failed")
	}
	f := newFixture(gw)
	row, _ := f.sessions.Create(testDBC(), "interview prep")
	before, _ := f.sessions.Get(testDBC(), row.ID)

	_, err := f.sessions.SendMessage(testDBC(), row.ID, longJobDescription())
	if apierr.KindOf(err) != apierr.KindUpstreamUnavailable {
		t.Fatalf("err = %v", err)
	}

	after, _ := f.sessions.Get(testDBC(), row.ID)
	if after.State != before.State {
		t.Fatalf("state changed: %s -> %s", before.State, after.State)
	}
	if len(after.DecodeMessages()) != len(before.DecodeMessages()) {
		t.Fatal("transcript was written despite the failed generation")
	}
	if cl, _ := after.DecodeChecklist(); cl != nil {
		t.Fatal("half-written checklist persisted")
	}
}

func TestSendMessageRepairExhaustedSurfaced(t *testing.T) {
	gw := &fakeGateway{}
	gw.checklistFn = func(string) (string, error) { return "not json at all", nil }
	f := newFixture(gw)
	row, _ := f.sessions.Create(testDBC(), "interview prep")

	_, err := f.sessions.SendMessage(testDBC(), row.ID, longJobDescription())
	if apierr.KindOf(err) != apierr.KindValidation {
		t.Fatalf("err = %v", err)
	}
	if gw.checklistCalls != 2 {
		t.Fatalf("generator calls = %d, want exactly one repair retry", gw.checklistCalls)
	}
}

func TestSendMessageNotFound(t *testing.T) {
	f := newFixture(&fakeGateway{})
	_, err := f.sessions.SendMessage(testDBC(), uuid.New(), "hello")
	if apierr.KindOf(err) != apierr.KindNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestRegenerateCarriesForwardDoneItems(t *testing.T) {
	f := newFixture(&fakeGateway{})
	row := readySession(t, f)
	cl, _ := row.DecodeChecklist()
	itemID := skillsItemID(t, cl)

	done := prep.StatusDone
	if _, err := f.todos.UpdateItem(testDBC(), row.ID, itemID, UpdateItemInput{Status: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}

	res, err := f.sessions.SendMessage(testDBC(), row.ID, "please regenerate the checklist with the latest info")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if !res.ChecklistGenerated {
		t.Fatal("regenerate intent not detected")
	}

	group := findGroup(res.Checklist, prep.GroupSkills)
	var carried *prep.TodoItem
	for i := range group.Items {
		if group.Items[i].Text == "Review React rendering model" {
			carried = &group.Items[i]
		}
	}
	if carried == nil || carried.Status != prep.StatusDone {
		t.Fatalf("done status not carried forward: %+v", carried)
	}
	if carried.ID == itemID {
		t.Fatal("item ids should be re-minted on regeneration")
	}
}

func TestReadyStateConversationDoesNotRegenerate(t *testing.T) {
	f := newFixture(&fakeGateway{})
	row := readySession(t, f)
	calls := f.gw.checklistCalls

	res, err := f.sessions.SendMessage(testDBC(), row.ID, "how should I practice CSS?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.ChecklistGenerated || f.gw.checklistCalls != calls {
		t.Fatal("plain question must not trigger regeneration")
	}
	if res.State != prep.StateReady {
		t.Fatalf("state = %s", res.State)
	}
}

func TestSendMessageBusy(t *testing.T) {
	f := newFixture(&fakeGateway{})
	row, _ := f.sessions.Create(testDBC(), "interview prep")

	key := row.ID.String()
	if !f.limiter.TryAcquire(key) {
		t.Fatal("setup acquire failed")
	}
	defer f.limiter.Release(key)

	_, err := f.sessions.SendMessage(testDBC(), row.ID, "hello")
	if apierr.KindOf(err) != apierr.KindBusy {
		t.Fatalf("err = %v", err)
	}
}

func TestConcurrentSendMessageSingleFlight(t *testing.T) {
	f := newFixture(&fakeGateway{})
	row, _ := f.sessions.Create(testDBC(), "interview prep")

	// Park the first turn inside the gateway so it holds the session lock.
	entered := make(chan struct{})
	release := make(chan struct{})
	f.gw.converseFn = func(prep.EventType, []prep.Message) (string, error) {
		close(entered)
		<-release
		return "ok", nil
	}

	var wg sync.WaitGroup
	var winnerErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, winnerErr = f.sessions.SendMessage(testDBC(), row.ID, "hello")
	}()
	<-entered

	if _, err := f.sessions.SendMessage(testDBC(), row.ID, "hello again"); apierr.KindOf(err) != apierr.KindBusy {
		t.Fatalf("overlapping turn err = %v, want Busy", err)
	}

	close(release)
	wg.Wait()
	if winnerErr != nil {
		t.Fatalf("winner err = %v", winnerErr)
	}

	// The lock is released, so the next turn goes through.
	f.gw.converseFn = nil
	if _, err := f.sessions.SendMessage(testDBC(), row.ID, "one more thing"); err != nil {
		t.Fatalf("post-release turn err = %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(&fakeGateway{})
	row, _ := f.sessions.Create(testDBC(), "interview prep")

	if err := f.sessions.Delete(testDBC(), row.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.sessions.Get(testDBC(), row.ID); apierr.KindOf(err) != apierr.KindNotFound {
		t.Fatalf("err = %v", err)
	}
	if err := f.sessions.Delete(testDBC(), row.ID); apierr.KindOf(err) != apierr.KindNotFound {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestCreateSessionSurvivesFollowUpFailure(t *testing.T) {
	gw := &fakeGateway{}
	gw.converseFn = func(prep.EventType, []prep.Message) (string, error) {
		return "", errors.New("model down")
	}
	f := newFixture(gw)

	row, err := f.sessions.Create(testDBC(), "interview prep")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	msgs := row.DecodeMessages()
	if len(msgs) != 2 || msgs[1].Content == "" {
		t.Fatalf("expected canned follow-up, got %+v", msgs)
	}
}
