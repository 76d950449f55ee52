package prep

// GroupKey is the fixed set of readiness dimensions a checklist is bucketed
// into. Group order is stable across regenerations.
type GroupKey string

const (
	GroupContext   GroupKey = "context"
	GroupSkills    GroupKey = "skills"
	GroupEvidence  GroupKey = "evidence"
	GroupDelivery  GroupKey = "delivery"
	GroupLogistics GroupKey = "logistics"
)

// GroupKeys is the canonical group order.
var GroupKeys = []GroupKey{GroupContext, GroupSkills, GroupEvidence, GroupDelivery, GroupLogistics}

// GroupLabels maps each key to its presentation label.
var GroupLabels = map[GroupKey]string{
	GroupContext:   "Context Understanding",
	GroupSkills:    "Skills / Knowledge Prep",
	GroupEvidence:  "Evidence & Examples",
	GroupDelivery:  "Delivery & Execution",
	GroupLogistics: "Logistics & Risk",
}

func (k GroupKey) Valid() bool {
	_, ok := GroupLabels[k]
	return ok
}

// MaxNextActions bounds next_3_actions; the list is truncated, never padded.
const MaxNextActions = 3

type TodoItem struct {
	ID              string     `json:"id"`
	GroupKey        GroupKey   `json:"group_key"`
	Text            string     `json:"text"`
	Status          TodoStatus `json:"status"`
	Priority        Priority   `json:"priority,omitempty"`
	EstimateMinutes int        `json:"estimate_minutes,omitempty"`
	Rationale       string     `json:"rationale,omitempty"`
}

type ChecklistGroup struct {
	Key   GroupKey   `json:"key"`
	Label string     `json:"label"`
	Items []TodoItem `json:"items"`
}

type Checklist struct {
	Title       string           `json:"title"`
	EventType   EventType        `json:"event_type"`
	Assumptions []string         `json:"assumptions"`
	Groups      []ChecklistGroup `json:"groups"`
	NextActions []string         `json:"next_3_actions"`
}

// FindItem returns a pointer into the checklist for in-place point updates.
func (c *Checklist) FindItem(itemID string) *TodoItem {
	if c == nil {
		return nil
	}
	for gi := range c.Groups {
		for ii := range c.Groups[gi].Items {
			if c.Groups[gi].Items[ii].ID == itemID {
				return &c.Groups[gi].Items[ii]
			}
		}
	}
	return nil
}
