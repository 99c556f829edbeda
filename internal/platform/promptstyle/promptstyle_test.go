package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	if got := ApplySystem("   ", ModeJSON); got != "" {
		t.Fatalf("blank prompt: got=%q", got)
	}
	out := ApplySystem("You are an expert teacher.", ModeJSON)
	if !strings.HasPrefix(out, marker) || !strings.HasSuffix(out, "You are an expert teacher.") {
		t.Fatalf("unexpected prompt: %q", out)
	}
	if !strings.Contains(out, "single JSON object") {
		t.Fatalf("json mode guidance missing: %q", out)
	}
	if again := ApplySystem(out, ModeJSON); again != out {
		t.Fatalf("ApplySystem must be idempotent")
	}
}

func TestApplySystemUnknownModeFallsBackToText(t *testing.T) {
	out := ApplySystem("Describe photosynthesis.", Mode("yaml"))
	if !strings.Contains(out, closing[ModeText]) || strings.Contains(out, "JSON") {
		t.Fatalf("unexpected guidance: %q", out)
	}
}
