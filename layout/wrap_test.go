package layout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapAlphabetNearTarget(t *testing.T) {
	desc := "a b c d e f g h i j k l m n o p q r s t u v w x y z aa bb cc"
	lines := Wrap(desc, 40)
	if len(lines) < 2 {
		t.Fatalf("期望折成多行，实际 %d 行: %q", len(lines), lines)
	}
	want := []string{
		"a b c d e f g h i j k l m n o p q r s t",
		"u v w x y z aa bb cc",
	}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("折行结果不符:\n got=%q\nwant=%q", lines, want)
	}
	if strings.Join(strings.Fields(strings.Join(lines, " ")), " ") != desc {
		t.Fatalf("折行后单词顺序或内容发生变化: %q", lines)
	}
}

func TestWrapEmptyDescription(t *testing.T) {
	if lines := Wrap("", 40); len(lines) != 0 {
		t.Fatalf("空描述应返回 0 行，实际 %q", lines)
	}
	if lines := Wrap("   \t ", 40); len(lines) != 0 {
		t.Fatalf("纯空白描述应返回 0 行，实际 %q", lines)
	}
}

func TestWrapLongWordOnItsOwnLine(t *testing.T) {
	long := strings.Repeat("x", 55)
	lines := Wrap("short "+long+" tail", 40)
	want := []string{"short", long, "tail"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("超长单词应独占一行: got=%q want=%q", lines, want)
	}

	lines = Wrap(long+" tail", 40)
	want = []string{"", long, "tail"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("首个单词超长时应先收束空行: got=%q want=%q", lines, want)
	}
	if lines := Wrap(strings.Repeat("y", 40), 40); len(lines) != 1 {
		t.Fatalf("恰好等于目标宽度的单词不应溢出: %q", lines)
	}
}

func TestWrapNeverSplitsWordsAndBoundsWidth(t *testing.T) {
	desc := "The war ended in 1945 after years of conflict across the globe, reshaping borders, alliances and economies for decades."
	words := strings.Fields(desc)
	lines := Wrap(desc, 40)

	var rejoined []string
	for _, line := range lines {
		parts := strings.Fields(line)
		rejoined = append(rejoined, parts...)
		last := parts[len(parts)-1]
		if len(parts) > 1 && utf8.RuneCountInString(line) > 40+utf8.RuneCountInString(last) {
			t.Fatalf("行宽超过目标加一个单词: %q", line)
		}
	}
	if strings.Join(rejoined, " ") != strings.Join(words, " ") {
		t.Fatalf("单词被拆分或丢失:\n got=%q\nwant=%q", rejoined, words)
	}
}

func TestWrapCountsRunesNotBytes(t *testing.T) {
	// 20 个双字节字符 + 空格 + 19 个字符，按 rune 计恰好能放进 40。
	a := strings.Repeat("é", 20)
	b := strings.Repeat("ü", 19)
	lines := Wrap(a+" "+b, 40)
	if len(lines) != 1 {
		t.Fatalf("expected one line when measured in runes, got %q", lines)
	}
}
