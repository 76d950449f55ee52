package prep

// InterviewTotalQuestions is the fixed length of a knowledge-test sub-dialogue.
const InterviewTotalQuestions = 4

// InterviewPassThreshold is the minimum rating (0-10) that marks the linked
// item done.
const InterviewPassThreshold = 7.0

type InterviewStatus string

const (
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
)

// AnswerVerdict is the gateway's judgement of a single answer.
type AnswerVerdict string

const (
	VerdictCorrect   AnswerVerdict = "correct"
	VerdictPartial   AnswerVerdict = "partial"
	VerdictIncorrect AnswerVerdict = "incorrect"
)

func (v AnswerVerdict) Valid() bool {
	return v == VerdictCorrect || v == VerdictPartial || v == VerdictIncorrect
}

// InterviewSession is the per-(session, todo item) knowledge-test state. A
// fresh start replaces any prior instance; a completed instance is immutable.
type InterviewSession struct {
	TodoID   string `json:"todo_id"`
	TodoText string `json:"todo_text"`

	Questions       []string        `json:"questions"`
	CurrentQuestion int             `json:"current_question"`
	TotalQuestions  int             `json:"total_questions"`
	History         []Message       `json:"history"`
	Verdicts        []AnswerVerdict `json:"verdicts"`

	Status          InterviewStatus `json:"status"`
	Rating          float64         `json:"rating,omitempty"`
	Passed          bool            `json:"passed,omitempty"`
	OverallFeedback string          `json:"overall_feedback,omitempty"`

	// CompletionApplied guards the one-shot done side effect on the parent
	// checklist item.
	CompletionApplied bool `json:"completion_applied,omitempty"`
}

func (s *InterviewSession) Complete() bool {
	return s != nil && s.Status == InterviewCompleted
}

// RateVerdicts computes the 0-10 rating from per-answer verdicts: correct
// answers score 2.5, partial 1.5, incorrect 0.5, capped at 10.
func RateVerdicts(verdicts []AnswerVerdict) float64 {
	var rating float64
	for _, v := range verdicts {
		switch v {
		case VerdictCorrect:
			rating += 2.5
		case VerdictPartial:
			rating += 1.5
		case VerdictIncorrect:
			rating += 0.5
		}
	}
	if rating > 10 {
		rating = 10
	}
	return rating
}
