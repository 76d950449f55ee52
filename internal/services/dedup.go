package services

import (
	"github.com/yungbote/interviewhub-backend/internal/checklist"
)

// QuestionDeduper reports whether a freshly generated interview question
// repeats one already asked in the same interview.
type QuestionDeduper interface {
	Seen(question string, asked []string) bool
}

type normalizedDeduper struct{}

// NewNormalizedDeduper matches questions by punctuation- and
// case-insensitive text equality.
func NewNormalizedDeduper() QuestionDeduper {
	return &normalizedDeduper{}
}

func (d *normalizedDeduper) Seen(question string, asked []string) bool {
	norm := checklist.Normalize(question)
	if norm == "" {
		return true
	}
	for _, q := range asked {
		if checklist.Normalize(q) == norm {
			return true
		}
	}
	return false
}
