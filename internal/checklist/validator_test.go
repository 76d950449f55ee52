package checklist

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
)

const sampleOutput = `{
	"title": "Frontend Interview Prep",
	"event_type": "interview",
	"assumptions": ["Assumed a virtual interview format"],
	"groups": [
		{"key": "context", "items": [
			{"id": "6f1e1d1a-93f2-4a51-8f1b-2a73c1de9a01", "text": "Re-read the job description", "priority": "high", "estimate_minutes": 20}
		]},
		{"key": "skills", "items": [
			{"id": "not-a-uuid", "text": "Review React hooks", "priority": "urgent"},
			{"id": "", "text": "   "}
		]},
		{"key": "homework", "items": [
			{"text": "Should be dropped with its group"}
		]}
	],
	"next_3_actions": ["Read the JD", "List top skills", "Book a mock interview", "A fourth action"]
}`

func TestParseValidOutput(t *testing.T) {
	cl, warnings, err := Parse(sampleOutput, prep.EventInterview, "fallback title")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cl.Title != "Frontend Interview Prep" {
		t.Fatalf("title=%q", cl.Title)
	}
	if cl.EventType != prep.EventInterview {
		t.Fatalf("event_type=%q", cl.EventType)
	}
	if len(cl.Groups) != len(prep.GroupKeys) {
		t.Fatalf("got %d groups, want %d", len(cl.Groups), len(prep.GroupKeys))
	}
	for i, g := range cl.Groups {
		if g.Key != prep.GroupKeys[i] {
			t.Fatalf("group %d key=%q, want %q", i, g.Key, prep.GroupKeys[i])
		}
		if g.Label != prep.GroupLabels[g.Key] {
			t.Fatalf("group %q label=%q", g.Key, g.Label)
		}
	}

	if len(cl.NextActions) != prep.MaxNextActions {
		t.Fatalf("next actions len=%d, want %d", len(cl.NextActions), prep.MaxNextActions)
	}

	// Well-formed model id is kept; malformed one is re-minted.
	ctx := cl.Groups[0]
	if len(ctx.Items) != 1 || ctx.Items[0].ID != "6f1e1d1a-93f2-4a51-8f1b-2a73c1de9a01" {
		t.Fatalf("context items: %+v", ctx.Items)
	}
	skills := cl.Groups[1]
	if len(skills.Items) != 1 {
		t.Fatalf("empty-text item not dropped: %+v", skills.Items)
	}
	if _, err := uuid.Parse(skills.Items[0].ID); err != nil {
		t.Fatalf("re-minted id not a uuid: %q", skills.Items[0].ID)
	}
	if skills.Items[0].Priority != "" {
		t.Fatalf("unknown priority not cleared: %q", skills.Items[0].Priority)
	}
	if skills.Items[0].Status != prep.StatusTodo {
		t.Fatalf("status=%q, want todo", skills.Items[0].Status)
	}

	joined := strings.Join(warnings, "; ")
	if !strings.Contains(joined, "homework") {
		t.Fatalf("unknown group warning missing: %v", warnings)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, _, err := Parse("this is not json", prep.EventInterview, "t")
	if !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("err=%v, want ErrMalformedJSON", err)
	}
	if !Repairable(err) {
		t.Fatalf("malformed JSON should be repairable")
	}
}

func TestParseMissingGroups(t *testing.T) {
	_, _, err := Parse(`{"title": "x", "event_type": "interview"}`, prep.EventInterview, "")
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("err=%v, want ErrSchema", err)
	}
}

func TestParseTitleFallback(t *testing.T) {
	cl, _, err := Parse(`{"event_type": "interview", "groups": []}`, prep.EventInterview, "goal text")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cl.Title != "goal text" {
		t.Fatalf("title=%q", cl.Title)
	}
	_, _, err = Parse(`{"groups": []}`, prep.EventInterview, "")
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("missing title should be a schema error, got %v", err)
	}
}

func TestParseCodeFence(t *testing.T) {
	fenced := "```json\n" + sampleOutput + "\n```"
	if _, _, err := Parse(fenced, prep.EventInterview, "t"); err != nil {
		t.Fatalf("fenced output should parse: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Write STAR stories", "write star stories"},
		{"  Write   STAR, stories!  ", "write star stories"},
		{"Review React/Node.js basics", "review react node js basics"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
