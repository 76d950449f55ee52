package prep

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message is one transcript turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the persisted unit of the whole dialogue: transcript, gathered
// context, the generated checklist, and any knowledge-test sub-dialogues all
// live on this row. Deleting the session deletes everything it owns.
type Session struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType    EventType    `gorm:"column:event_type;not null;index" json:"event_type"`
	Title        string       `gorm:"column:title;not null" json:"title"`
	UserGoalText string       `gorm:"column:user_goal_text;type:text;not null" json:"user_goal_text"`
	State        SessionState `gorm:"column:state;not null;default:'intake'" json:"state"`

	Context    datatypes.JSON `gorm:"type:jsonb;column:context;not null;default:'{}'" json:"context"`
	Messages   datatypes.JSON `gorm:"type:jsonb;column:messages;not null;default:'[]'" json:"messages"`
	Checklist  datatypes.JSON `gorm:"type:jsonb;column:checklist" json:"checklist,omitempty"`
	Interviews datatypes.JSON `gorm:"type:jsonb;column:interviews;not null;default:'{}'" json:"interviews"`

	// Timestamps are set in application code (repo Create/Save) rather than
	// by a SQL default, so the schema migrates on both postgres and sqlite.
	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Session) TableName() string { return "prep_session" }

func (s *Session) DecodeContext() map[string]string {
	out := map[string]string{}
	if len(s.Context) > 0 {
		_ = json.Unmarshal(s.Context, &out)
	}
	return out
}

func (s *Session) SetContext(ctx map[string]string) error {
	raw, err := json.Marshal(ctx)
	if err != nil {
		return err
	}
	s.Context = datatypes.JSON(raw)
	return nil
}

func (s *Session) DecodeMessages() []Message {
	out := []Message{}
	if len(s.Messages) > 0 {
		_ = json.Unmarshal(s.Messages, &out)
	}
	return out
}

func (s *Session) SetMessages(msgs []Message) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	s.Messages = datatypes.JSON(raw)
	return nil
}

// DecodeChecklist returns nil when no checklist has been generated yet.
func (s *Session) DecodeChecklist() (*Checklist, error) {
	if len(s.Checklist) == 0 || string(s.Checklist) == "null" {
		return nil, nil
	}
	var cl Checklist
	if err := json.Unmarshal(s.Checklist, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (s *Session) SetChecklist(cl *Checklist) error {
	if cl == nil {
		s.Checklist = nil
		return nil
	}
	raw, err := json.Marshal(cl)
	if err != nil {
		return err
	}
	s.Checklist = datatypes.JSON(raw)
	return nil
}

func (s *Session) DecodeInterviews() map[string]*InterviewSession {
	out := map[string]*InterviewSession{}
	if len(s.Interviews) > 0 {
		_ = json.Unmarshal(s.Interviews, &out)
	}
	return out
}

func (s *Session) SetInterviews(ivs map[string]*InterviewSession) error {
	raw, err := json.Marshal(ivs)
	if err != nil {
		return err
	}
	s.Interviews = datatypes.JSON(raw)
	return nil
}
