// Package promptstyle stamps a shared guidance preamble onto LLM system prompts.
package promptstyle

import "strings"

const marker = "DLP_PROMPT_STYLE_V1"

type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

var common = []string{
	"You write classroom-ready lesson plan content for teachers.",
	"Follow the system and user instructions precisely.",
	"Write exponents as ^ and subscripts as _ (for example x^2, H_2O).",
}

var closing = map[Mode]string{
	ModeText: "Be concise and structured when helpful.",
	ModeJSON: "Return a single JSON object with exactly the requested keys and no commentary.",
}

// ApplySystem prefixes system with the preamble for mode. Blank prompts stay
// blank, and a prompt that already carries the preamble is returned as is.
func ApplySystem(system string, mode Mode) string {
	system = strings.TrimSpace(system)
	if system == "" || strings.HasPrefix(system, marker) {
		return system
	}
	last, ok := closing[mode]
	if !ok {
		last = closing[ModeText]
	}
	lines := make([]string, 0, len(common)+4)
	lines = append(lines, marker)
	lines = append(lines, common...)
	lines = append(lines, last, "---", system)
	return strings.Join(lines, "\n")
}
