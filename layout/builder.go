package layout

import (
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"github.com/ByLCY/timeline/event"
)

// ErrMissingDate 表示某条记录缺少可用于排序的日期。
var ErrMissingDate = errors.New("event has no date")

// SortError 描述一次被放弃的排序，Index 为出问题的记录下标。
type SortError struct {
	Index int
	Err   error
}

func (e *SortError) Error() string {
	return fmt.Sprintf("cannot sort events by date (record %d): %v", e.Index, e.Err)
}

func (e *SortError) Unwrap() error { return e.Err }

// Build 对事件排序、分配坐标并生成折行后的显示块。
// 输入切片不会被修改；任何单条记录的问题都不会使整个调用失败。
func Build(events []event.Event, opts BuildOptions) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	ordered, err := SortByDate(events)
	sorted := err == nil
	if err != nil {
		logger.Printf("could not sort events by date: %v", err)
	}

	target := opts.targetLength()
	items := make([]Item, 0, len(ordered))
	for i, ev := range ordered {
		items = append(items, Item{
			Index:    i,
			X:        i,
			Y:        LineY,
			LabelY:   LabelY,
			Date:     ev.Date,
			Title:    ev.Title,
			Header:   Header(ev),
			Segments: Wrap(ev.Description, target),
		})
	}

	return &Result{
		Events: ordered,
		Items:  items,
		Sorted: sorted,
		Axis: Axis{
			XMin: 0,
			XMax: max(len(ordered)-1, 0),
			YMin: AxisMin,
			YMax: AxisMax,
		},
		Meta: DocumentMeta{
			Title: title(opts.Topic),
			Topic: opts.Topic,
		},
	}
}

// SortByDate 按日期字符串做字典序稳定排序（不是按日历排序）。
// 只要有一条记录日期为空，就放弃排序并返回原顺序的副本与 *SortError。
func SortByDate(events []event.Event) ([]event.Event, error) {
	out := event.Clone(events)
	for i, ev := range out {
		if strings.TrimSpace(ev.Date) == "" {
			return out, &SortError{Index: i, Err: ErrMissingDate}
		}
	}
	slices.SortStableFunc(out, func(a, b event.Event) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out, nil
}

// Header 生成 "date: title" 形式的标题行，不包含任何标记。
func Header(ev event.Event) string {
	return ev.Date + ": " + ev.Title
}

func title(topic string) string {
	if topic == "" {
		return "Interactive Timeline"
	}
	return "Interactive Timeline: " + topic
}
