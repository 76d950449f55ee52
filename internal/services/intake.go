package services

import (
	"strings"

	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
)

// IntakePolicy decides whether enough context has been gathered to generate
// a checklist for the session's event type.
type IntakePolicy interface {
	Sufficient(eventType prep.EventType, context map[string]string, messages []prep.Message) bool
}

type slotIntakePolicy struct{}

func NewSlotIntakePolicy() IntakePolicy {
	return &slotIntakePolicy{}
}

var interviewSlots = []string{"job_description", "company", "interview_format", "technologies", "timeline"}

// longMessageChars is the length past which a pasted user message is treated
// as a job description or equivalent role text.
const longMessageChars = 200

func (p *slotIntakePolicy) Sufficient(eventType prep.EventType, context map[string]string, messages []prep.Message) bool {
	switch eventType {
	case prep.EventInterview:
		// A job description alone carries enough signal; otherwise wait
		// until most of the intake slots have surfaced in the dialogue.
		if context["job_description"] != "" {
			return true
		}
		known := 0
		for _, slot := range interviewSlots {
			if context[slot] != "" || slotMentioned(slot, messages) {
				known++
			}
		}
		return known >= 3
	default:
		if len(context) >= 2 {
			return true
		}
		return userMessageCount(messages) >= 3
	}
}

func slotMentioned(slot string, messages []prep.Message) bool {
	phrase := strings.ReplaceAll(slot, "_", " ")
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m.Content), phrase) {
			return true
		}
	}
	return false
}

func userMessageCount(messages []prep.Message) int {
	n := 0
	for _, m := range messages {
		if m.Role == prep.RoleUser {
			n++
		}
	}
	return n
}

var companyNames = []string{
	"google", "microsoft", "amazon", "meta", "apple", "netflix",
	"stripe", "uber", "airbnb", "openai",
}

// ExtractContext sniffs structured slots out of a free-text user message and
// merges them into the session context. Existing slots are never overwritten.
func ExtractContext(context map[string]string, content string) map[string]string {
	if context == nil {
		context = map[string]string{}
	}
	lower := strings.ToLower(content)
	if context["job_description"] == "" && len([]rune(content)) > longMessageChars {
		context["job_description"] = content
	}
	if context["company"] == "" {
		for _, name := range companyNames {
			if strings.Contains(lower, name) {
				context["company"] = name
				break
			}
		}
	}
	if context["interview_format"] == "" {
		for _, kw := range []string{"coding interview", "system design", "behavioral", "take-home", "panel"} {
			if strings.Contains(lower, kw) {
				context["interview_format"] = kw
				break
			}
		}
	}
	return context
}
