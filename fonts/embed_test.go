package fonts

import "testing"

func TestLoadBuiltinFonts(t *testing.T) {
	for _, name := range []string{Regular, "builtin:bold", "Italic"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) returned no data", name)
		}
	}
	if _, err := Load("comic-sans"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}
