package textrenderer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/timeline/event"
	"github.com/ByLCY/timeline/layout"
	"github.com/ByLCY/timeline/renderer"
)

const ruleWidth = 50

// Renderer 以终端文本形式输出时间轴。
type Renderer struct {
	title   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	body    lipgloss.Style
	rule    lipgloss.Style
	wrapped bool
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建文本渲染器；wrapped 为 true 时描述按布局片段逐行输出，
// 否则整段输出在 "Description:" 之后。
func NewRenderer(wrapped bool) *Renderer {
	return &Renderer{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		header:  lipgloss.NewStyle().Bold(true),
		label:   lipgloss.NewStyle().Faint(true),
		body:    lipgloss.NewStyle().PaddingLeft(2),
		rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		wrapped: wrapped,
	}
}

// Render 输出标题、主题以及每个事件的标题行与描述。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if !r.wrapped {
		return r.RenderEvents(result.Meta.Topic, result.Events), nil
	}

	var b strings.Builder
	r.writeHead(&b, result.Meta.Topic)
	for _, it := range result.Items {
		b.WriteString(r.header.Render(it.Header))
		b.WriteByte('\n')
		if len(it.Segments) > 0 {
			b.WriteString(r.body.Render(strings.Join(it.Segments, "\n")))
			b.WriteByte('\n')
		}
		r.writeRule(&b)
	}
	return []byte(b.String()), nil
}

// RenderEvents 按给定顺序输出事件，不经过布局排序。
func (r *Renderer) RenderEvents(topic string, events []event.Event) []byte {
	var b strings.Builder
	r.writeHead(&b, topic)
	for _, ev := range events {
		b.WriteString(r.header.Render(layout.Header(ev)))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s %s\n", r.label.Render("Description:"), ev.Description)
		r.writeRule(&b)
	}
	return []byte(b.String())
}

func (r *Renderer) writeHead(b *strings.Builder, topic string) {
	b.WriteString(r.title.Render("=== Text-Based Timeline ==="))
	b.WriteByte('\n')
	fmt.Fprintf(b, "%s %s\n\n", r.label.Render("Topic:"), topic)
}

func (r *Renderer) writeRule(b *strings.Builder) {
	b.WriteString(r.rule.Render(strings.Repeat("-", ruleWidth)))
	b.WriteByte('\n')
}
