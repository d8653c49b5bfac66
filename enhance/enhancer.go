package enhance

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/ByLCY/timeline/event"
)

var (
	ErrEmptyResponse = errors.New("enhancer returned an empty response")
	ErrNoJSONArray   = errors.New("enhancer response holds no JSON array")
)

// Enhancer rewrites event descriptions through an external text service.
type Enhancer interface {
	EnhanceEvent(ctx context.Context, ev event.Event) (event.Event, error)
	EnhanceTimeline(ctx context.Context, events []event.Event) ([]event.Event, error)
}

// Nop returns its input unchanged.
type Nop struct{}

func (Nop) EnhanceEvent(_ context.Context, ev event.Event) (event.Event, error) { return ev, nil }

func (Nop) EnhanceTimeline(_ context.Context, events []event.Event) ([]event.Event, error) {
	return event.Clone(events), nil
}

// BestEffort enhances the whole timeline and falls back to the original
// events when the enhancer fails or returns nothing. The boolean reports
// whether the enhanced events were used.
func BestEffort(ctx context.Context, e Enhancer, events []event.Event, logger *log.Logger) ([]event.Event, bool) {
	logger = orDiscard(logger)
	if e == nil || len(events) == 0 {
		return events, false
	}
	enhanced, err := e.EnhanceTimeline(ctx, events)
	if err == nil && len(enhanced) == 0 {
		err = ErrEmptyResponse
	}
	if err != nil {
		logger.Printf("could not enhance timeline: %v", err)
		return events, false
	}
	return enhanced, true
}

// EachBestEffort enhances events one at a time. An event whose
// enhancement fails keeps its original description. It returns the number
// of events that were enhanced.
func EachBestEffort(ctx context.Context, e Enhancer, events []event.Event, logger *log.Logger) ([]event.Event, int) {
	logger = orDiscard(logger)
	out := event.Clone(events)
	if e == nil {
		return out, 0
	}
	enhanced := 0
	for i, ev := range out {
		if ctx.Err() != nil {
			logger.Printf("stopping event enhancement: %v", ctx.Err())
			break
		}
		next, err := e.EnhanceEvent(ctx, ev)
		if err != nil {
			logger.Printf("could not enhance event %q: %v", ev.Title, err)
			continue
		}
		out[i] = next
		enhanced++
	}
	return out, enhanced
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return logger
}
