package htmlrenderer

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ByLCY/timeline/layout"
	"github.com/ByLCY/timeline/renderer"
)

// Renderer 输出一个自包含的交互式 HTML 页面：事件点位于同一条水平线上，
// 悬停时显示带标题与折行描述的提示框。
type Renderer struct {
	md goldmark.Markdown
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建 HTML 渲染器。提示框内容先组成 Markdown，再由 goldmark 转为 HTML，
// 片段之间使用硬换行。
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps())),
	}
}

type pageData struct {
	Title string
	Items []itemData
}

type itemData struct {
	Date    string
	Style   template.CSS
	Tooltip template.HTML
}

// Render 渲染完整 HTML 文档。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("缺少可渲染的事件")
	}

	data := pageData{Title: result.Meta.Title}
	n := len(result.Items)
	for i, it := range result.Items {
		tip, err := r.Tooltip(it)
		if err != nil {
			return nil, fmt.Errorf("渲染事件 %d 提示框失败: %w", i, err)
		}
		data.Items = append(data.Items, itemData{
			Date:    it.Date,
			Style:   template.CSS(fmt.Sprintf("left: %.2f%%", position(it.X, n))),
			Tooltip: tip,
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("写入 HTML 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Tooltip 将单个事件转换为提示框 HTML。
func (r *Renderer) Tooltip(it layout.Item) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(Markdown(it)), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Markdown 组成提示框的 Markdown：加粗标题、空行、每个片段一行。
func Markdown(it layout.Item) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(escapeMarkdown(it.Header))
	b.WriteString("**")
	if len(it.Segments) > 0 {
		b.WriteString("\n\n")
		for i, seg := range it.Segments {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(escapeMarkdown(seg))
		}
	}
	b.WriteByte('\n')
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`, "~", `\~`, "&", `\&`,
)

// blockMarker 匹配行首会被解析为列表或标题下划线的标记：
// "1945." / "3)" 中的标点，以及 "-"、"+"、"="。
var blockMarker = regexp.MustCompile(`^[ \t]*(?:\d+([.)])|([-+=]))`)

// escapeMarkdown 让文本按字面显示，不被解析为 Markdown 语法。
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	m := blockMarker.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	at := m[2]
	if at < 0 {
		at = m[4]
	}
	return s[:at] + `\` + s[at:]
}

// position 将下标映射为水平百分比，两端各留 5%。
func position(x, n int) float64 {
	if n <= 1 {
		return 50
	}
	return 5 + 90*float64(x)/float64(n-1)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 50px 50px 100px; }
h1 { font-size: 1.4em; }
.timeline { position: relative; height: 320px; }
.axis { position: absolute; left: 0; right: 0; top: 50%; border-top: 2px solid blue; }
.event { position: absolute; top: 50%; transform: translate(-50%, -6px); text-align: center; }
.dot { display: block; width: 12px; height: 12px; margin: 0 auto; border-radius: 50%; background: red; cursor: pointer; }
.label { display: block; margin-top: 8px; font-size: 10px; white-space: nowrap; }
.tooltip { display: none; position: absolute; bottom: 24px; left: 50%; transform: translateX(-50%);
  background: white; color: black; border: 1px solid black; padding: 6px 8px; font-size: 12px;
  text-align: left; white-space: nowrap; z-index: 1; }
.tooltip p { margin: 0 0 0.6em; }
.event:hover .tooltip { display: block; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="timeline">
<div class="axis"></div>
{{- range .Items}}
<div class="event" style="{{.Style}}">
<span class="dot"></span>
<span class="label">{{.Date}}</span>
<div class="tooltip">{{.Tooltip}}</div>
</div>
{{- end}}
</div>
</body>
</html>
`))
