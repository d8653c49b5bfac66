package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/ByLCY/timeline/event"
)

// Match is an event that matched a fuzzy query.
type Match struct {
	Index   int
	Event   event.Event
	Score   int
	Matched []int // byte offsets into Key
	Key     string
}

type source []event.Event

func (s source) String(i int) string { return Key(s[i]) }
func (s source) Len() int            { return len(s) }

// Key is the text a query is matched against.
func Key(ev event.Event) string {
	return ev.Date + " " + ev.Title
}

// Events returns the events whose date and title fuzzily match query,
// best match first. An empty query matches nothing.
func Events(query string, events []event.Event) []Match {
	if query == "" {
		return nil
	}
	matches := fuzzy.FindFrom(query, source(events))
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{
			Index:   m.Index,
			Event:   events[m.Index],
			Score:   m.Score,
			Matched: m.MatchedIndexes,
			Key:     m.Str,
		})
	}
	return out
}
