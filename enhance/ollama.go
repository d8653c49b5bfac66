package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ByLCY/timeline/binding"
	"github.com/ByLCY/timeline/event"
)

const (
	DefaultURL   = "http://localhost:11434/api/generate"
	DefaultModel = "llama3"

	// EventPrompt is interpolated with the fields of one event.
	EventPrompt = "Given this historical event from ${date}: ${title} - ${description}\n" +
		"Please enhance the description to be more engaging and informative in 2-3 sentences. " +
		"Return only the enhanced description, no additional commentary."

	// TimelinePrompt is interpolated with {"events": [...]}.
	TimelinePrompt = "Given these timeline events, enhance and standardize their descriptions " +
		"to be more engaging and informative. Keep the same dates and titles, " +
		"but improve the descriptions. Return the result as a JSON array with " +
		"'date', 'title', and 'description' fields:\n\n${events|json}"
)

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// OllamaOptions configures an Ollama client. Zero values fall back to
// the package defaults.
type OllamaOptions struct {
	URL            string
	Model          string
	Timeout        time.Duration
	Retries        int
	Backoff        time.Duration
	MaxBackoff     time.Duration
	EventPrompt    string
	TimelinePrompt string
	HTTPClient     *http.Client
}

// Ollama talks to a text-generation endpoint with the /api/generate
// request shape.
type Ollama struct {
	url            string
	model          string
	retries        int
	backoff        time.Duration
	maxBackoff     time.Duration
	eventPrompt    string
	timelinePrompt string
	client         *http.Client
}

var _ Enhancer = (*Ollama)(nil)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewOllama creates a client from opts.
func NewOllama(opts OllamaOptions) *Ollama {
	o := &Ollama{
		url:            opts.URL,
		model:          opts.Model,
		retries:        opts.Retries,
		backoff:        opts.Backoff,
		maxBackoff:     opts.MaxBackoff,
		eventPrompt:    opts.EventPrompt,
		timelinePrompt: opts.TimelinePrompt,
		client:         opts.HTTPClient,
	}
	if o.url == "" {
		o.url = DefaultURL
	}
	if o.model == "" {
		o.model = DefaultModel
	}
	if o.retries <= 0 {
		o.retries = 1
	}
	if o.backoff <= 0 {
		o.backoff = 500 * time.Millisecond
	}
	if o.maxBackoff < o.backoff {
		o.maxBackoff = 8 * o.backoff
	}
	if o.eventPrompt == "" {
		o.eventPrompt = EventPrompt
	}
	if o.timelinePrompt == "" {
		o.timelinePrompt = TimelinePrompt
	}
	if o.client == nil {
		o.client = newHTTPClient(opts.Timeout)
	}
	return o
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// EnhanceEvent asks for a richer description of a single event.
func (o *Ollama) EnhanceEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	text, err := o.generate(ctx, binding.Interpolate(o.eventPrompt, ev.Fields()))
	if err != nil {
		return ev, err
	}
	ev.Description = text
	return ev, nil
}

// EnhanceTimeline sends the full list and decodes the first JSON array
// found in the reply.
func (o *Ollama) EnhanceTimeline(ctx context.Context, events []event.Event) ([]event.Event, error) {
	prompt := binding.Interpolate(o.timelinePrompt, map[string]any{"events": events})
	text, err := o.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return DecodeEvents(text)
}

// DecodeEvents extracts the outermost [ ... ] span of text and decodes it
// as a list of events.
func DecodeEvents(text string) ([]event.Event, error) {
	raw := jsonArrayPattern.FindString(text)
	if raw == "" {
		return nil, ErrNoJSONArray
	}
	var out []event.Event
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode enhanced timeline: %w", err)
	}
	return out, nil
}

func (o *Ollama) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: o.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	var text string
	err = Retry(ctx, o.retries, o.backoff, o.maxBackoff, func() error {
		var callErr error
		text, callErr = o.post(ctx, body)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (o *Ollama) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return "", permanent(fmt.Errorf("create generate request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("generate request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return "", permanent(err)
		}
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", permanent(fmt.Errorf("decode generate response: %w", err))
	}
	if out.Error != "" {
		return "", permanent(fmt.Errorf("generate: %s", out.Error))
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", permanent(ErrEmptyResponse)
	}
	return text, nil
}
