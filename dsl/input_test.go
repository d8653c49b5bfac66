package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/timeline/dsl"
)

func TestReadBulkStopsAtDoubleEmptyLine(t *testing.T) {
	in := "date: 1\nOne\n\ndate: 2\nTwo\n\n\nignored after paste\n"
	got, err := dsl.ReadBulk(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadBulk error: %v", err)
	}
	want := "date: 1\nOne\n\ndate: 2\nTwo"
	if got != want {
		t.Fatalf("ReadBulk mismatch:\n got=%q\nwant=%q", got, want)
	}
}

func TestReadBulkUntilEOF(t *testing.T) {
	got, err := dsl.ReadBulk(strings.NewReader("date: 1\nOne"))
	if err != nil {
		t.Fatalf("ReadBulk error: %v", err)
	}
	if got != "date: 1\nOne" {
		t.Fatalf("unexpected bulk text: %q", got)
	}
}
