package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/timeline/fonts"
	"github.com/ByLCY/timeline/layout"
	"github.com/ByLCY/timeline/renderer"
)

// 输出格式。
const (
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

const (
	defaultSpacing  = 50.0 // 相邻事件点的水平间距（mm）
	defaultMargin   = 15.0
	defaultFontSize = 9.0 // pt
	cardPadding     = 2.0
	cardGap         = 8.0 // 卡片与时间轴之间的距离
	labelGap        = 4.0 // 日期标签与时间轴之间的距离
	markerRadius    = 1.6
	lineWidth       = 0.6
	borderWidth     = 0.2
)

// Renderer draws a timeline layout as a static SVG or PDF chart via
// github.com/tdewolff/canvas.
type Renderer struct {
	format   string
	spacing  float64
	margin   float64
	fontSize float64

	fontOnce sync.Once
	family   *canvas.FontFamily
	fontErr  error
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer. Lengths are in millimetres,
// FontSize in points.
type Options struct {
	Format   string
	Spacing  float64
	Margin   float64
	FontSize float64
}

// NewRenderer creates an SVG renderer with default geometry.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{Format: FormatSVG}) }

// NewRendererWithOptions creates a renderer; zero values fall back to defaults.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		format:   strings.ToLower(opts.Format),
		spacing:  opts.Spacing,
		margin:   opts.Margin,
		fontSize: opts.FontSize,
	}
	if r.format == "" {
		r.format = FormatSVG
	}
	if r.spacing <= 0 {
		r.spacing = defaultSpacing
	}
	if r.margin <= 0 {
		r.margin = defaultMargin
	}
	if r.fontSize <= 0 {
		r.fontSize = defaultFontSize
	}
	return r
}

// card 是单个事件的文本框（mm）。
type card struct {
	x, y   float64
	width  float64
	height float64
	lines  []cardLine
}

type cardLine struct {
	text string
	bold bool
}

// Render renders the result into SVG or PDF bytes.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("缺少可渲染的事件")
	}
	if r.format != FormatSVG && r.format != FormatPDF {
		return nil, fmt.Errorf("不支持的输出格式 %q", r.format)
	}

	regular, err := r.face(canvas.FontRegular, r.fontSize, canvas.Black)
	if err != nil {
		return nil, err
	}
	bold, err := r.face(canvas.FontBold, r.fontSize, canvas.Black)
	if err != nil {
		return nil, err
	}
	titleFace, err := r.face(canvas.FontBold, r.fontSize*1.6, canvas.Black)
	if err != nil {
		return nil, err
	}
	labelFace, err := r.face(canvas.FontItalic, r.fontSize, canvas.Hex("#444444"))
	if err != nil {
		return nil, err
	}

	lineHeight := toMm(r.fontSize) * 1.35
	titleHeight := toMm(r.fontSize*1.6) * 1.5

	cards := make([]card, len(result.Items))
	maxCard := 0.0
	for i, it := range result.Items {
		cards[i] = buildCard(it, regular, bold, lineHeight)
		maxCard = math.Max(maxCard, cards[i].height)
	}

	width := 2*r.margin + r.spacing*float64(len(result.Items))
	lineY := r.margin + titleHeight + maxCard + cardGap
	height := lineY + labelGap + lineHeight + cardGap + maxCard + r.margin

	// 偶数下标的卡片在时间轴上方，奇数在下方（日期标签之下）。
	for i := range cards {
		cx := r.dotX(i)
		c := &cards[i]
		c.x = math.Min(math.Max(cx-c.width/2, r.margin/2), width-r.margin/2-c.width)
		if i%2 == 0 {
			c.y = lineY - cardGap - c.height
		} else {
			c.y = lineY + labelGap + lineHeight + cardGap
		}
	}

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标保持左上角为原点

	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	ctx.DrawText(r.margin, r.margin+titleFace.Metrics().Ascent, canvas.NewTextLine(titleFace, result.Meta.Title, canvas.Left))

	r.drawAxis(ctx, len(result.Items), lineY)
	for i, it := range result.Items {
		x := r.dotX(i)
		r.drawConnector(ctx, x, lineY, cards[i], i%2 == 0)
		r.drawMarker(ctx, x, lineY)
		ctx.DrawText(x, lineY+labelGap+labelFace.Metrics().Ascent, canvas.NewTextLine(labelFace, it.Date, canvas.Center))
	}
	for _, cd := range cards {
		drawCard(ctx, cd, regular, bold, lineHeight)
	}

	var buf bytes.Buffer
	switch r.format {
	case FormatPDF:
		writer := pdf.New(&buf, width, height, nil)
		writer.SetInfo(result.Meta.Title, result.Meta.Topic, "timeline", "", "timeline")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	default:
		writer := svg.New(&buf, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) dotX(i int) float64 {
	return r.margin + r.spacing*(float64(i)+0.5)
}

func buildCard(it layout.Item, regular, bold *canvas.FontFace, lineHeight float64) card {
	lines := []cardLine{{text: it.Header, bold: true}}
	if len(it.Segments) > 0 {
		lines = append(lines, cardLine{})
		for _, seg := range it.Segments {
			lines = append(lines, cardLine{text: seg})
		}
	}
	w := 0.0
	for _, ln := range lines {
		face := regular
		if ln.bold {
			face = bold
		}
		w = math.Max(w, face.TextWidth(ln.text))
	}
	return card{
		width:  w + 2*cardPadding,
		height: float64(len(lines))*lineHeight + 2*cardPadding,
		lines:  lines,
	}
}

// drawAxis 绘制贯穿所有事件点的水平线。
func (r *Renderer) drawAxis(ctx *canvas.Context, n int, y float64) {
	x1, x2 := r.dotX(0), r.dotX(n-1)
	if n == 1 {
		x1, x2 = x1-r.spacing/2, x2+r.spacing/2
	}
	ctx.SetStrokeColor(canvas.Blue)
	ctx.SetStrokeWidth(lineWidth)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, 0)
	ctx.DrawPath(x1, y, p)
}

func (r *Renderer) drawConnector(ctx *canvas.Context, x, lineY float64, cd card, above bool) {
	ctx.SetStrokeColor(canvas.Hex("#999999"))
	ctx.SetStrokeWidth(borderWidth)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	if above {
		p.LineTo(0, cd.y+cd.height-lineY)
	} else {
		p.LineTo(0, cd.y-lineY)
	}
	ctx.DrawPath(x, lineY, p)
}

func (r *Renderer) drawMarker(ctx *canvas.Context, x, y float64) {
	ctx.SetFillColor(canvas.Red)
	ctx.SetStrokeColor(canvas.Red)
	ctx.SetStrokeWidth(borderWidth)
	ctx.DrawPath(x-markerRadius, y-markerRadius, canvas.Circle(markerRadius))
}

func drawCard(ctx *canvas.Context, cd card, regular, bold *canvas.FontFace, lineHeight float64) {
	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(canvas.Black)
	ctx.SetStrokeWidth(borderWidth)
	ctx.DrawPath(cd.x, cd.y, canvas.Rectangle(cd.width, cd.height))

	cursorY := cd.y + cardPadding
	for _, ln := range cd.lines {
		face := regular
		if ln.bold {
			face = bold
		}
		if ln.text != "" {
			// 基线位置：行顶部加上字体上升部
			ctx.DrawText(cd.x+cardPadding, cursorY+face.Metrics().Ascent, canvas.NewTextLine(face, ln.text, canvas.Left))
		}
		cursorY += lineHeight
	}
}

func (r *Renderer) face(style canvas.FontStyle, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	family, err := r.fontFamily()
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, col, style, canvas.FontNormal), nil
}

func (r *Renderer) fontFamily() (*canvas.FontFamily, error) {
	r.fontOnce.Do(func() {
		family := canvas.NewFontFamily("timeline")
		for _, f := range []struct {
			name  string
			style canvas.FontStyle
		}{{fonts.Regular, canvas.FontRegular}, {fonts.Bold, canvas.FontBold}, {fonts.Italic, canvas.FontItalic}} {
			data, err := fonts.Load(f.name)
			if err != nil {
				r.fontErr = err
				return
			}
			if err := family.LoadFont(data, 0, f.style); err != nil {
				r.fontErr = fmt.Errorf("加载字体 %s 失败: %w", f.name, err)
				return
			}
		}
		r.family = family
	})
	return r.family, r.fontErr
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
