package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Sink receives progress notifications around slow steps.
type Sink interface {
	Start(message string)
	Stop()
}

// Nop ignores all progress notifications.
type Nop struct{}

func (Nop) Start(string) {}
func (Nop) Stop()        {}

// Spinner animates a braille spinner next to a message on w until Stop.
type Spinner struct {
	w      io.Writer
	frames []string
	fps    time.Duration

	mu      sync.Mutex
	message string
	done    chan struct{}
	wg      sync.WaitGroup
}

var _ Sink = (*Spinner)(nil)

// NewSpinner returns a spinner drawing the bubbles Dot frames onto w.
func NewSpinner(w io.Writer) *Spinner {
	frames := make([]string, len(spinner.Dot.Frames))
	for i, f := range spinner.Dot.Frames {
		frames[i] = strings.TrimSpace(f)
	}
	return &Spinner{w: w, frames: frames, fps: spinner.Dot.FPS}
}

// Start begins animating message. Calling Start while running only
// replaces the message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.spin(s.done)
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	msg := s.message
	s.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	s.wg.Wait()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(msg))+2))
}

func (s *Spinner) spin(done <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.fps)
	defer ticker.Stop()
	for i := 0; ; i++ {
		s.mu.Lock()
		msg := s.message
		s.mu.Unlock()
		fmt.Fprintf(s.w, "\r%s %s", msg, s.frames[i%len(s.frames)])
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}
