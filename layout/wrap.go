package layout

import (
	"strings"
	"unicode/utf8"
)

// Wrap 以贪心策略将 text 按空白拆词并拼成接近 target 宽度的行。
// 单词从不被拆开；超过 target 的单词独占一行。空文本返回 nil。
//
// 累计长度的规则：追加单词时加上 len(word)+1，新开一行时重置为 len(word)。
// 溢出时总是收束当前行，所以首个单词超长时结果以空行 "" 开头。
func Wrap(text string, target int) []string {
	if target <= 0 {
		target = DefaultTargetLength
	}
	var (
		lines   []string
		current []string
		length  int
	)
	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		if length+n > target {
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
			length = n
			continue
		}
		current = append(current, word)
		length += n + 1
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}
