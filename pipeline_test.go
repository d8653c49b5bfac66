package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ByLCY/timeline/config"
	"github.com/ByLCY/timeline/enhance"
	"github.com/ByLCY/timeline/event"
	"github.com/ByLCY/timeline/layout"
	"github.com/ByLCY/timeline/metrics"
	"github.com/ByLCY/timeline/renderer"
)

const sampleInput = `date: 1945
End of WWII
The war ended in 1945 after years of conflict across the globe.

date: 1939
Start of WWII
Germany invaded Poland.
`

// stubRenderer 记录收到的布局结果，避免测试依赖真实渲染。
type stubRenderer struct {
	got *layout.Result
}

func (s *stubRenderer) Render(result *layout.Result) ([]byte, error) {
	s.got = result
	return []byte("rendered"), nil
}

type upperEnhancer struct{ enhance.Nop }

func (upperEnhancer) EnhanceTimeline(_ context.Context, events []event.Event) ([]event.Event, error) {
	out := event.Clone(events)
	for i := range out {
		out[i].Description = strings.ToUpper(out[i].Description)
	}
	return out, nil
}

type brokenEnhancer struct{ enhance.Nop }

func (brokenEnhancer) EnhanceTimeline(context.Context, []event.Event) ([]event.Event, error) {
	return nil, errors.New("connection refused")
}

type recordingSink struct{ started []string }

func (s *recordingSink) Start(msg string) { s.started = append(s.started, msg) }
func (s *recordingSink) Stop()            {}

func TestPipelineRunsEndToEnd(t *testing.T) {
	r := &stubRenderer{}
	sink := &recordingSink{}
	var summary bytes.Buffer
	p := &pipeline{
		cfg:      config.Default(),
		topic:    "WWII",
		enhancer: upperEnhancer{},
		renderer: r,
		progress: sink,
		metrics:  metrics.New(),
		summary:  &summary,
	}
	out, err := p.run(context.Background(), sampleInput)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if string(out.Data) != "rendered" || out.Batch.Parsed != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if r.got.Events[0].Date != "1939" {
		t.Fatalf("expected sorted events, got %+v", r.got.Events)
	}
	if r.got.Events[0].Description != "GERMANY INVADED POLAND." {
		t.Fatalf("expected enhanced description, got %q", r.got.Events[0].Description)
	}
	if len(sink.started) != 2 {
		t.Fatalf("expected parse and enhance progress, got %v", sink.started)
	}
	if n, err := testutil.GatherAndCount(p.metrics.Registry(), "timeline_chunks_total", "timeline_enhancements_total"); err != nil || n != 3 {
		t.Fatalf("expected parsed, skipped and applied series, got %d (%v)", n, err)
	}
	text := summary.String()
	if !strings.Contains(text, "Topic: WWII") {
		t.Fatalf("summary missing topic:\n%s", text)
	}
	if strings.Index(text, "1945: End of WWII") > strings.Index(text, "1939: Start of WWII") {
		t.Fatalf("summary should list events in enhanced order, before sorting:\n%s", text)
	}
	if !strings.Contains(text, "THE WAR ENDED IN 1945") {
		t.Fatalf("summary should show enhanced descriptions:\n%s", text)
	}
}

func TestPipelineKeepsOriginalWhenEnhancerFails(t *testing.T) {
	r := &stubRenderer{}
	p := &pipeline{cfg: config.Default(), enhancer: brokenEnhancer{}, renderer: r}
	if _, err := p.run(context.Background(), sampleInput); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.got.Events[1].Description != "The war ended in 1945 after years of conflict across the globe." {
		t.Fatalf("expected original description, got %q", r.got.Events[1].Description)
	}
}

func TestPipelineStopsWithoutEvents(t *testing.T) {
	r := &stubRenderer{}
	p := &pipeline{cfg: config.Default(), renderer: r}
	out, err := p.run(context.Background(), "date: 1920\n")
	if !errors.Is(err, errNoEvents) {
		t.Fatalf("expected errNoEvents, got %v", err)
	}
	if out.Batch.Parsed != 0 || r.got != nil {
		t.Fatalf("renderer must not run without events")
	}
}

func TestPipelineEventMode(t *testing.T) {
	cfg := config.Default()
	cfg.Enhancer.Mode = config.ModeEvent
	var items int
	r := renderer.Func(func(result *layout.Result) ([]byte, error) {
		items = len(result.Items)
		return nil, nil
	})
	p := &pipeline{cfg: cfg, enhancer: enhance.Nop{}, renderer: r, metrics: metrics.New()}
	if _, err := p.run(context.Background(), sampleInput); err != nil {
		t.Fatalf("run: %v", err)
	}
	if items != 2 {
		t.Fatalf("expected 2 items, got %d", items)
	}
}

func TestOutputPath(t *testing.T) {
	cfg := config.Default().Output
	cfg.Dir = "out"
	if got := outputPath(cfg, "World War II", ".html"); got != filepath.Join("out", "timeline_world_war_ii.html") {
		t.Fatalf("unexpected output path %q", got)
	}
}

func TestNewRendererFormats(t *testing.T) {
	for format, ext := range map[string]string{"html": ".html", "svg": ".svg", "pdf": ".pdf", "text": ".txt"} {
		r, gotExt, err := newRenderer(format)
		if err != nil || r == nil || gotExt != ext {
			t.Fatalf("newRenderer(%q) = %v, %q, %v", format, r, gotExt, err)
		}
	}
	if _, _, err := newRenderer("gif"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestRenderCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "events.txt")
	if err := os.WriteFile(in, []byte(sampleInput), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	outPath := filepath.Join(dir, "out", "wwii.html")
	debugPath := filepath.Join(dir, "layout.json")
	promPath := filepath.Join(dir, "timeline.prom")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"render", in, "--no-enhance", "--topic", "WWII", "-o", outPath, "--debug", debugPath, "--metrics-textfile", promPath})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render command: %v\n%s", err, stderr.String())
	}

	page, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(page), "Interactive Timeline: WWII") {
		t.Fatalf("unexpected page:\n%s", page)
	}
	for _, p := range []string{debugPath, promPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
	}
	if !strings.Contains(stdout.String(), "Timeline saved as: "+outPath) {
		t.Fatalf("missing saved message:\n%s", stdout.String())
	}
}

func TestRenderCommandVerboseLogsWithoutSpinner(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "events.txt")
	if err := os.WriteFile(in, []byte(sampleInput), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"render", in, "-v", "-q", "--no-enhance", "-o", filepath.Join(dir, "t.html")})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render command: %v", err)
	}
	logs := stderr.String()
	if !strings.Contains(logs, "[timeline] ") || !strings.Contains(logs, "parsed event: 1945 - End of WWII") {
		t.Fatalf("expected verbose diagnostics, got:\n%s", logs)
	}
	if strings.Contains(logs, "\rParsing timeline") {
		t.Fatalf("spinner frames must not interleave with diagnostics:\n%s", logs)
	}
}

func TestParseCommandReadsStdin(t *testing.T) {
	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(sampleInput + "\n\n"))
	cmd.SetArgs([]string{"parse"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("parse command: %v", err)
	}
	if !strings.Contains(stdout.String(), `"parsed": 2`) {
		t.Fatalf("unexpected parse output:\n%s", stdout.String())
	}
}

func TestFindCommand(t *testing.T) {
	in := filepath.Join(t.TempDir(), "events.txt")
	if err := os.WriteFile(in, []byte(sampleInput), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"find", "poland", in})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("titles do not mention poland, expected no match")
	}

	stdout.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"find", "start", in})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("find command: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "1939: Start of WWII" {
		t.Fatalf("unexpected find output: %q", stdout.String())
	}
}
