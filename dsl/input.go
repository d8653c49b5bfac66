package dsl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadBulk collects pasted lines from r until two consecutive empty lines
// or EOF. The trailing empty line that ends the paste is dropped.
func ReadBulk(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	previousEmpty := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if previousEmpty {
				break
			}
			previousEmpty = true
		} else {
			previousEmpty = false
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read pasted timeline: %w", err)
	}

	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n"), nil
}
