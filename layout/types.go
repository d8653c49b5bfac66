package layout

import "github.com/ByLCY/timeline/event"

// 该文件定义布局结果，供渲染器与调试 JSON 共用。

// 时间轴的纵向约定：所有事件点位于同一水平线上，日期标签位于线下方。
const (
	LineY   = 0.0
	LabelY  = -0.1
	AxisMin = -0.5
	AxisMax = 0.5
)

// Result 保存排序后的事件以及每个事件的显示块。
type Result struct {
	Events []event.Event `json:"events"`
	Items  []Item        `json:"items"`
	Sorted bool          `json:"sorted"`
	Axis   Axis          `json:"axis"`
	Meta   DocumentMeta  `json:"meta"`
}

// Item 是单个事件在时间轴上的位置与已折行的文本。
type Item struct {
	Index    int      `json:"index"`
	X        int      `json:"x"`
	Y        float64  `json:"y"`
	LabelY   float64  `json:"labelY"`
	Date     string   `json:"date"`
	Title    string   `json:"title"`
	Header   string   `json:"header"`
	Segments []string `json:"segments"`
}

// Axis 描述纵轴可见范围，横轴范围为 [0, n-1]。
type Axis struct {
	XMin int     `json:"xMin"`
	XMax int     `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// DocumentMeta 保存输出文档的标题信息。
type DocumentMeta struct {
	Title string `json:"title"`
	Topic string `json:"topic"`
}

// Segments 返回 record index → 折行片段 的映射。
func (r *Result) Segments() map[int][]string {
	out := make(map[int][]string, len(r.Items))
	for _, it := range r.Items {
		out[it.Index] = it.Segments
	}
	return out
}

// Headers 返回 record index → 标题行 的映射。
func (r *Result) Headers() map[int]string {
	out := make(map[int]string, len(r.Items))
	for _, it := range r.Items {
		out[it.Index] = it.Header
	}
	return out
}
