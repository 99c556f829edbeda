package content

import (
	_ "embed"
	"strings"
	"text/template"
)

const SystemPrompt = "You are an expert teacher."

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("dlp").Option("missingkey=error").Parse(promptSource))

// UserPrompt renders the fixed lesson plan request for in.
func UserPrompt(in LessonPlanInputs) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, in); err != nil {
		return "", err
	}
	return b.String(), nil
}
