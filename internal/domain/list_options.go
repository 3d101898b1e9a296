package domain

import "strings"

// ListOptions narrows a task listing. Nil fields do not filter.
type ListOptions struct {
	Status       *Status
	Priority     *Priority
	NameContains *string
}

// IsEmpty reports whether no filter is set.
func (o ListOptions) IsEmpty() bool {
	return o.Status == nil && o.Priority == nil && (o.NameContains == nil || *o.NameContains == "")
}

// Matches reports whether the task passes every set filter.
// Name matching is a case-insensitive substring match.
func (o ListOptions) Matches(t Task) bool {
	if o.Status != nil && t.Status != *o.Status {
		return false
	}
	if o.Priority != nil && t.Priority != *o.Priority {
		return false
	}
	if o.NameContains != nil && *o.NameContains != "" {
		if !strings.Contains(strings.ToLower(t.Name), strings.ToLower(*o.NameContains)) {
			return false
		}
	}
	return true
}
