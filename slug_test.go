package folio

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Main Portfolio", "main-portfolio"},
		{"  June  2025  report ", "june-2025-report"},
		{"A/B (test)!", "a-b-test"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlugShape(t *testing.T) {
	slug := UniqueSlug("Main Portfolio 2025-06-30", func(string) bool { return false })

	name, suffix, ok := strings.Cut(slug, "#")
	if !ok {
		t.Fatalf("UniqueSlug = %q, want a name#suffix shape", slug)
	}
	if name != "main-portfolio-2025-06-30" {
		t.Errorf("name part = %q", name)
	}
	if len(suffix) != 6 {
		t.Errorf("suffix = %q, want 6 characters", suffix)
	}
	for _, r := range suffix {
		if !strings.ContainsRune(slugAlphabet, r) {
			t.Errorf("suffix %q contains %q, not in the base36 alphabet", suffix, r)
		}
	}
}

func TestUniqueSlugRegeneratesOnCollision(t *testing.T) {
	var seen []string
	taken := func(slug string) bool {
		seen = append(seen, slug)
		return len(seen) < 3 // first two candidates collide
	}

	slug := UniqueSlug("report", taken)
	if len(seen) != 3 {
		t.Fatalf("tried %d candidates, want 3", len(seen))
	}
	if slug != seen[2] {
		t.Errorf("UniqueSlug = %q, want the first free candidate %q", slug, seen[2])
	}
	if seen[0] == seen[1] && seen[1] == seen[2] {
		t.Error("colliding candidates should differ in their suffix")
	}
}
