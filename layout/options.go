package layout

import "log"

// DefaultTargetLength 是贪心折行的目标行宽（字符数）。
const DefaultTargetLength = 40

// BuildOptions 配置布局阶段的参数与诊断输出。
type BuildOptions struct {
	TargetLength int         // <=0 时使用 DefaultTargetLength
	Topic        string      // 时间轴主题，写入 Result.Meta
	Logger       *log.Logger // 排序失败等非致命诊断；为空时丢弃
}

func (o BuildOptions) targetLength() int {
	if o.TargetLength <= 0 {
		return DefaultTargetLength
	}
	return o.TargetLength
}
