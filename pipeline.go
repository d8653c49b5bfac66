package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ByLCY/timeline/binding"
	"github.com/ByLCY/timeline/config"
	"github.com/ByLCY/timeline/dsl"
	"github.com/ByLCY/timeline/enhance"
	"github.com/ByLCY/timeline/event"
	"github.com/ByLCY/timeline/layout"
	"github.com/ByLCY/timeline/metrics"
	"github.com/ByLCY/timeline/progress"
	"github.com/ByLCY/timeline/renderer"
	canvasrenderer "github.com/ByLCY/timeline/renderer/canvas"
	htmlrenderer "github.com/ByLCY/timeline/renderer/html"
	textrenderer "github.com/ByLCY/timeline/renderer/text"
)

// errNoEvents is returned when the input holds no valid event; nothing is
// rendered in that case.
var errNoEvents = errors.New("could not parse any events from the input")

// pipeline 串联解析、增强、布局与渲染。
type pipeline struct {
	cfg      config.Config
	topic    string
	enhancer enhance.Enhancer // nil 表示跳过增强
	renderer renderer.Renderer
	progress progress.Sink
	metrics  *metrics.Recorder
	logger   *log.Logger
	summary  io.Writer // 文本时间轴摘要；nil 表示不输出
}

type output struct {
	Batch  *dsl.Batch
	Result *layout.Result
	Data   []byte
}

func (p *pipeline) run(ctx context.Context, input string) (*output, error) {
	if p.renderer == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	sink := p.progress
	if sink == nil {
		sink = progress.Nop{}
	}

	sink.Start("Parsing timeline")
	batch, err := dsl.ParseString(input, dsl.ParseOptions{Logger: p.logger})
	sink.Stop()
	if err != nil {
		return nil, fmt.Errorf("解析时间轴失败: %w", err)
	}
	if p.metrics != nil {
		p.metrics.ObserveParse(batch.Parsed, len(batch.Skipped))
	}
	if len(batch.Events) == 0 {
		return &output{Batch: batch}, errNoEvents
	}

	events := p.enhance(ctx, sink, batch.Events)
	if len(events) == 0 {
		return &output{Batch: batch}, errNoEvents
	}

	// 摘要按增强后的原始顺序输出，排序只影响图表。
	if p.summary != nil {
		if _, err := p.summary.Write(textrenderer.NewRenderer(false).RenderEvents(p.topic, events)); err != nil {
			return nil, err
		}
	}

	result := layout.Build(events, layout.BuildOptions{
		TargetLength: p.cfg.Wrap.TargetLength,
		Topic:        p.topic,
		Logger:       p.logger,
	})
	if p.metrics != nil {
		p.metrics.ObserveLayout(len(result.Items), result.Sorted)
	}

	data, err := p.renderer.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染时间轴失败: %w", err)
	}
	return &output{Batch: batch, Result: result, Data: data}, nil
}

func (p *pipeline) enhance(ctx context.Context, sink progress.Sink, events []event.Event) []event.Event {
	if p.enhancer == nil {
		return events
	}
	sink.Start("Enhancing with AI")
	defer sink.Stop()

	if p.cfg.Enhancer.Mode == config.ModeEvent {
		out, n := enhance.EachBestEffort(ctx, p.enhancer, events, p.logger)
		if p.metrics != nil {
			for i := range events {
				p.metrics.ObserveEnhancement(i < n)
			}
		}
		return out
	}
	out, ok := enhance.BestEffort(ctx, p.enhancer, events, p.logger)
	if p.metrics != nil {
		p.metrics.ObserveEnhancement(ok)
	}
	return out
}

// newRenderer 根据格式返回渲染器与文件扩展名。
func newRenderer(format string) (renderer.Renderer, string, error) {
	switch format {
	case "html":
		return htmlrenderer.NewRenderer(), ".html", nil
	case "svg":
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Format: canvasrenderer.FormatSVG}), ".svg", nil
	case "pdf":
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Format: canvasrenderer.FormatPDF}), ".pdf", nil
	case "text":
		return textrenderer.NewRenderer(true), ".txt", nil
	default:
		return nil, "", fmt.Errorf("unknown output format %q", format)
	}
}

func newEnhancer(cfg config.EnhancerConfig) enhance.Enhancer {
	if !cfg.Enabled {
		return nil
	}
	return enhance.NewOllama(enhance.OllamaOptions{
		URL:        cfg.URL,
		Model:      cfg.Model,
		Timeout:    cfg.Timeout,
		Retries:    cfg.Retries,
		Backoff:    cfg.Backoff,
		MaxBackoff: cfg.MaxBackoff,
	})
}

// outputPath 由输出目录与文件名模板生成路径，例如 timeline_world_war_ii.html。
func outputPath(cfg config.OutputConfig, topic, ext string) string {
	name := binding.Interpolate(cfg.Name, map[string]any{"topic": topic})
	return filepath.Join(cfg.Dir, name+ext)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}
