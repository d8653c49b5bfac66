package renderer

import "github.com/ByLCY/timeline/layout"

// Renderer 将布局结果输出为最终文件，例如 HTML、SVG 或 PDF。
// Render 返回生成的字节数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Func 让普通函数满足 Renderer 接口，便于测试替换。
type Func func(result *layout.Result) ([]byte, error)

func (f Func) Render(result *layout.Result) ([]byte, error) { return f(result) }
