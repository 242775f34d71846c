package lang

import "testing"

func TestForExtension(t *testing.T) {
	cases := map[string]string{
		".go":   Go,
		".py":   Python,
		".js":   JavaScript,
		".mjs":  JavaScript,
		".jsx":  JavaScript,
		".ts":   TypeScript,
		".tsx":  TypeScript,
		".rb":   "",
		"":      "",
		".GO":   Go,
		".java": "",
	}
	for ext, want := range cases {
		if got := ForExtension(ext); got != want {
			t.Errorf("ForExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestNamesStable(t *testing.T) {
	a := Names()
	b := Names()
	if len(a) != len(b) {
		t.Fatalf("Names() length varies: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Names() order varies at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("func  Foo(\n\ta int,\n\tb int,\n)")
	want := "func Foo( a int, b int, )"
	if got != want {
		t.Errorf("CollapseWhitespace = %q, want %q", got, want)
	}
}
