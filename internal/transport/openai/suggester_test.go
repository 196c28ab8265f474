package openai

import (
	"strings"
	"testing"

	"github.com/shopgrid/prodsearch/internal/domain"
)

func TestParseLines(t *testing.T) {
	content := "- try office chairs\n\n* standing desks\n  monitors  \none\ntwo\nthree"
	got := parseLines(content)
	if len(got) != maxSuggestions {
		t.Fatalf("expected %d suggestions, got %d: %v", maxSuggestions, len(got), got)
	}
	if got[0] != "try office chairs" || got[1] != "standing desks" || got[2] != "monitors" {
		t.Errorf("bullets and whitespace must be stripped: %v", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("gamer laptop", []domain.Taxonomy{
		{Name: "Laptops"}, {Name: "Desks"},
	})
	for _, want := range []string{`"gamer laptop"`, "Laptops, Desks"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
