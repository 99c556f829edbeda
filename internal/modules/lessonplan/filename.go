// Package lessonplan holds the naming and defaults shared by the lesson plan
// request surfaces.
package lessonplan

import (
	"fmt"
	"strings"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
)

const (
	DefaultTeacherName   = "JUAN DELA CRUZ"
	DefaultPrincipalName = "MARIA SANTOS"
)

var pathSeparators = strings.NewReplacer("/", "-", "\\", "-")

// FileName is the download name of a rendered plan: DLP_<subject>_<grade>.docx.
func FileName(subject, grade string) string {
	return pathSeparators.Replace(fmt.Sprintf("DLP_%s_%s.%s", strings.TrimSpace(subject), strings.TrimSpace(grade), docx.FileExt))
}

// OrDefault returns v trimmed, or def when v is blank.
func OrDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
