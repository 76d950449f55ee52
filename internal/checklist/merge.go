package checklist

import (
	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
)

// MergeCarryForward copies done status from oldList onto items of newList
// whose normalized text matches, so regeneration never loses completed work.
// newList is mutated in place; the number of carried items is returned.
func MergeCarryForward(oldList, newList *prep.Checklist) int {
	if oldList == nil || newList == nil {
		return 0
	}

	done := map[string]bool{}
	for _, g := range oldList.Groups {
		for _, it := range g.Items {
			if it.Status == prep.StatusDone {
				done[Normalize(it.Text)] = true
			}
		}
	}
	if len(done) == 0 {
		return 0
	}

	carried := 0
	for gi := range newList.Groups {
		for ii := range newList.Groups[gi].Items {
			item := &newList.Groups[gi].Items[ii]
			if item.Status == prep.StatusDone {
				continue
			}
			if done[Normalize(item.Text)] {
				item.Status = prep.StatusDone
				carried++
			}
		}
	}
	return carried
}
