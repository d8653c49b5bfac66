package event

import "strings"

// Event is one dated entry of a timeline.
//
// Date is kept as the author wrote it ("1945", "March 1945"); it is only
// ever compared and displayed as a string.
type Event struct {
	Date        string `json:"date" yaml:"date"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Valid reports whether both date and title are non-empty after trimming.
func (e Event) Valid() bool {
	return strings.TrimSpace(e.Date) != "" && strings.TrimSpace(e.Title) != ""
}

// Fields exposes the event as a flat map for template interpolation.
func (e Event) Fields() map[string]any {
	return map[string]any{
		"date":        e.Date,
		"title":       e.Title,
		"description": e.Description,
	}
}

// Clone returns a copy of events so callers can reorder without aliasing.
func Clone(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
