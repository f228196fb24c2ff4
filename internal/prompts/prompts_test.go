package prompts

import (
	"strings"
	"testing"
)

func TestImage_EmbedsThemeAndStyle(t *testing.T) {
	got := Image("sunset travel")
	if !strings.Contains(got, "inspired by the theme: sunset travel.") {
		t.Fatalf("theme missing: %q", got)
	}
	for _, want := range []string{"cinematic", "golden hour", "No text, no logos, no watermarks"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("unexpected trailing newline")
	}
}

func TestCaption_EndsWithInstruction(t *testing.T) {
	got := Caption("life motivation")
	if !strings.Contains(got, "theme: life motivation.") {
		t.Fatalf("theme missing: %q", got)
	}
	if !strings.HasSuffix(got, "Write the caption now:") {
		t.Fatalf("unexpected suffix: %q", got)
	}
	if !strings.Contains(got, "No exclamation marks") {
		t.Fatalf("tone rules missing")
	}
}

func TestHashtags_EmbedsThemeAndCaption(t *testing.T) {
	got := Hashtags("coffee", "Slow mornings build steady days.")
	if !strings.Contains(got, "Theme: coffee\nCaption: Slow mornings build steady days.") {
		t.Fatalf("theme/caption block missing: %q", got)
	}
	if !strings.Contains(got, "10-15") || !strings.HasSuffix(got, "Generate the hashtags now:") {
		t.Fatalf("unexpected template: %q", got)
	}
}

func TestPrompts_AcceptAnyInput(t *testing.T) {
	for _, theme := range []string{"", "{{.Theme}}", "ünïcødé 🌅", strings.Repeat("x", 10000)} {
		if !strings.Contains(Image(theme), theme) || !strings.Contains(Caption(theme), theme) {
			t.Fatalf("theme %q not embedded verbatim", theme[:min(len(theme), 20)])
		}
	}
	if Caption("a") != Caption("a") {
		t.Fatalf("not deterministic")
	}
}
