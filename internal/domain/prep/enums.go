package prep

// EventType classifies what the user is preparing for.
type EventType string

const (
	EventInterview         EventType = "interview"
	EventPresentation      EventType = "presentation"
	EventPerformanceReview EventType = "performance_review"
	EventNegotiation       EventType = "negotiation"
	EventOther             EventType = "other"
)

func (e EventType) Valid() bool {
	switch e {
	case EventInterview, EventPresentation, EventPerformanceReview, EventNegotiation, EventOther:
		return true
	}
	return false
}

// ParseEventType folds free text onto the closed set, defaulting to other.
func ParseEventType(s string) EventType {
	e := EventType(s)
	if e.Valid() {
		return e
	}
	return EventOther
}

// SessionState is the dialogue lifecycle of a session.
type SessionState string

const (
	StateIntake    SessionState = "intake"
	StateGathering SessionState = "gathering"
	StateReady     SessionState = "ready"
)

// TodoStatus is a strict two-state enum.
type TodoStatus string

const (
	StatusTodo TodoStatus = "todo"
	StatusDone TodoStatus = "done"
)

func (s TodoStatus) Valid() bool {
	return s == StatusTodo || s == StatusDone
}

type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityMed  Priority = "med"
	PriorityLow  Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMed || p == PriorityLow
}

// Role of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)
