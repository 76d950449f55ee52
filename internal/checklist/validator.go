package checklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
)

// ErrMalformedJSON marks model output that did not parse as JSON at all. The
// caller retries generation once with a repair instruction before surfacing.
var ErrMalformedJSON = errors.New("model output is not valid JSON")

// ErrSchema marks parseable output missing required top-level structure.
var ErrSchema = errors.New("model output does not match the checklist schema")

// Repairable reports whether a Parse failure is worth one retry with a
// repair prompt.
func Repairable(err error) bool {
	return errors.Is(err, ErrMalformedJSON) || errors.Is(err, ErrSchema)
}

type rawItem struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	Priority        string `json:"priority"`
	EstimateMinutes int    `json:"estimate_minutes"`
	Rationale       string `json:"rationale"`
}

type rawGroup struct {
	Key   string    `json:"key"`
	Items []rawItem `json:"items"`
}

type rawChecklist struct {
	Title       string          `json:"title"`
	EventType   string          `json:"event_type"`
	Assumptions []string        `json:"assumptions"`
	Groups      *[]rawGroup     `json:"groups"`
	NextActions []string        `json:"next_3_actions"`
	Extra       json.RawMessage `json:"-"`
}

// Parse validates raw model output into a typed checklist. Model output is
// untrusted: unknown group keys are dropped with a warning, empty-text items
// are dropped, out-of-enum priorities are cleared, next_3_actions is truncated
// to 3, and item ids are re-minted unless the model supplied a well-formed
// UUID. eventType is the session's classification and always wins over
// whatever the model echoed back; fallbackTitle is used when the model omits
// a title.
func Parse(raw string, eventType prep.EventType, fallbackTitle string) (*prep.Checklist, []string, error) {
	raw = stripCodeFence(raw)

	var rc rawChecklist
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if rc.Groups == nil {
		return nil, nil, fmt.Errorf("%w: missing groups", ErrSchema)
	}

	title := strings.TrimSpace(rc.Title)
	if title == "" {
		title = strings.TrimSpace(fallbackTitle)
	}
	if title == "" {
		return nil, nil, fmt.Errorf("%w: missing title", ErrSchema)
	}

	var warnings []string

	byKey := map[prep.GroupKey][]prep.TodoItem{}
	for _, g := range *rc.Groups {
		key := prep.GroupKey(strings.ToLower(strings.TrimSpace(g.Key)))
		if !key.Valid() {
			warnings = append(warnings, fmt.Sprintf("dropped unknown group key %q", g.Key))
			continue
		}
		for _, it := range g.Items {
			item, warn, ok := validateItem(it, key)
			if warn != "" {
				warnings = append(warnings, warn)
			}
			if ok {
				byKey[key] = append(byKey[key], item)
			}
		}
	}

	groups := make([]prep.ChecklistGroup, 0, len(prep.GroupKeys))
	for _, key := range prep.GroupKeys {
		items := byKey[key]
		if items == nil {
			items = []prep.TodoItem{}
		}
		groups = append(groups, prep.ChecklistGroup{
			Key:   key,
			Label: prep.GroupLabels[key],
			Items: items,
		})
	}

	assumptions := make([]string, 0, len(rc.Assumptions))
	for _, a := range rc.Assumptions {
		if s := strings.TrimSpace(a); s != "" {
			assumptions = append(assumptions, s)
		}
	}

	next := make([]string, 0, prep.MaxNextActions)
	for _, a := range rc.NextActions {
		if len(next) == prep.MaxNextActions {
			warnings = append(warnings, "truncated next_3_actions")
			break
		}
		if s := strings.TrimSpace(a); s != "" {
			next = append(next, s)
		}
	}

	return &prep.Checklist{
		Title:       title,
		EventType:   eventType,
		Assumptions: assumptions,
		Groups:      groups,
		NextActions: next,
	}, warnings, nil
}

func validateItem(it rawItem, key prep.GroupKey) (prep.TodoItem, string, bool) {
	text := strings.TrimSpace(it.Text)
	if text == "" {
		return prep.TodoItem{}, fmt.Sprintf("dropped empty item in group %q", key), false
	}

	var warn string
	id := canonicalUUID(it.ID)
	if id == "" {
		// Primary identity is never trusted to the model.
		id = uuid.New().String()
	}

	priority := prep.Priority(strings.ToLower(strings.TrimSpace(it.Priority)))
	if it.Priority != "" && !priority.Valid() {
		warn = fmt.Sprintf("cleared unknown priority %q on item %q", it.Priority, text)
		priority = ""
	}
	if !priority.Valid() {
		priority = ""
	}

	estimate := it.EstimateMinutes
	if estimate < 0 {
		estimate = 0
	}

	return prep.TodoItem{
		ID:              id,
		GroupKey:        key,
		Text:            text,
		Status:          prep.StatusTodo,
		Priority:        priority,
		EstimateMinutes: estimate,
		Rationale:       strings.TrimSpace(it.Rationale),
	}, warn, true
}

// canonicalUUID returns the lowercase canonical text form, or "" when the
// input is not a well-formed 36-char UUID.
func canonicalUUID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return ""
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return ""
	}
	return id.String()
}

// stripCodeFence tolerates models wrapping JSON in a markdown fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
