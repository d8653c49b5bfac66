package dsl

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/timeline/event"
)

// Marker is the case-sensitive prefix that opens a new event chunk.
const Marker = "date:"

var (
	// ErrMalformedChunk marks a chunk that cannot form a record: fewer than
	// two non-empty lines, or an empty date or title.
	ErrMalformedChunk = errors.New("malformed chunk")
	// ErrPreamble marks text that appears before the first date: line.
	ErrPreamble = errors.New("text before first date: marker")
)

var (
	bulkLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Marker", Pattern: `[^\S\n]*date:`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "Text", Pattern: `[^\n]+`},
	})

	markerTokenType  = mustTokenType("Marker")
	newlineTokenType = mustTokenType("Newline")

	documentParser = participle.MustBuild[Document](
		participle.Lexer(bulkLexer),
	)
)

// Document is the raw segmentation of a bulk timeline text.
type Document struct {
	Chunks []*Chunk `parser:"@@*"`
}

// Chunk is a contiguous span of lines that starts at a date: line
// (or at the beginning of the input, for a preamble).
type Chunk struct {
	Pos    lexer.Position
	Marked bool
	Lines  []string
}

// Parse implements participle.Parseable. A chunk consumes tokens up to,
// but not including, the next Marker that sits at the start of a line.
func (c *Chunk) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if tok.EOF() {
		return participle.NextMatch
	}
	c.Pos = tok.Pos
	c.Marked = tok.Type == markerTokenType

	var line strings.Builder
	atLineStart := true
	consumed := false
	for {
		tok := lex.Peek()
		if tok.EOF() {
			break
		}
		if tok.Type == markerTokenType && atLineStart && consumed {
			break
		}
		lex.Next()
		consumed = true

		if tok.Type == newlineTokenType {
			c.Lines = append(c.Lines, line.String())
			line.Reset()
			atLineStart = true
			continue
		}
		line.WriteString(tok.Value)
		atLineStart = false
	}
	if line.Len() > 0 {
		c.Lines = append(c.Lines, line.String())
	}
	return nil
}

// Event extracts the record held by the chunk.
func (c *Chunk) Event() (event.Event, error) {
	if !c.Marked {
		return event.Event{}, ErrPreamble
	}
	lines := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return event.Event{}, fmt.Errorf("%w: need a date and a title line, got %d line(s)", ErrMalformedChunk, len(lines))
	}

	ev := event.Event{
		Date:        strings.TrimSpace(strings.ReplaceAll(lines[0], Marker, "")),
		Title:       lines[1],
		Description: strings.TrimSpace(strings.Join(lines[2:], " ")),
	}
	if !ev.Valid() {
		return event.Event{}, fmt.Errorf("%w: empty date or title", ErrMalformedChunk)
	}
	return ev, nil
}

// ParseOptions carries the diagnostics sink for a parse run.
type ParseOptions struct {
	Logger *log.Logger
}

// Skip records a chunk dropped during parsing.
type Skip struct {
	Line int
	Err  error
}

// Batch is the outcome of parsing one bulk text.
type Batch struct {
	Events  []event.Event
	Parsed  int
	Skipped []Skip
}

// Parse reads the whole of r and parses it as a bulk timeline.
func Parse(r io.Reader, opts ParseOptions) (*Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read timeline text: %w", err)
	}
	return ParseString(string(data), opts)
}

// ParseString splits input into chunks and extracts one event per valid
// chunk, in source order. A bad chunk is logged and skipped; it never
// aborts the run.
func ParseString(input string, opts ParseOptions) (*Batch, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	doc, err := documentParser.ParseString("", normalizeNewlines(input))
	if err != nil {
		return nil, fmt.Errorf("segment timeline text: %w", err)
	}

	batch := &Batch{}
	for _, chunk := range doc.Chunks {
		ev, err := chunk.Event()
		if err != nil {
			if !isBlank(chunk) {
				logger.Printf("skipping chunk at line %d: %v", chunk.Pos.Line, err)
				batch.Skipped = append(batch.Skipped, Skip{Line: chunk.Pos.Line, Err: err})
			}
			continue
		}
		logger.Printf("parsed event: %s - %s", ev.Date, ev.Title)
		batch.Events = append(batch.Events, ev)
	}
	batch.Parsed = len(batch.Events)
	logger.Printf("total events parsed: %d", batch.Parsed)
	return batch, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// isBlank reports whether a chunk is only whitespace; such chunks come
// from leading blank lines and are not worth a diagnostic.
func isBlank(c *Chunk) bool {
	for _, l := range c.Lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

func mustTokenType(name string) lexer.TokenType {
	symbols := bulkLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
