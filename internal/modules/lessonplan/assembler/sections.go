package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/content"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
)

const (
	SectionCurriculum = "I. CURRICULUM CONTENT, STANDARD AND LESSON COMPETENCIES"
	SectionResources  = "II. LEARNING RESOURCES"
	SectionProcedure  = "III. TEACHING AND LEARNING PROCEDURE"
	SectionEvaluation = "IV. EVALUATING LEARNING"

	LabelLessonPurpose = "B. Establishing Lesson Purpose"
)

// EnsureNumber returns text trimmed and prefixed with "<n>. " unless the
// trimmed text already starts with "<n>.".
//
// The check is a plain prefix test, so "1.5 kg of rice..." counts as
// already numbered for n=1.
func EnsureNumber(n int, text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, strconv.Itoa(n)+".") {
		return s
	}
	return fmt.Sprintf("%d. %s", n, s)
}

// CellFiller writes extra content into a cell; used for the lesson purpose
// picture.
type CellFiller func(cell *docx.Cell)

// ComposeSections appends the four numbered sections to t in template order.
// It is total: a zero LessonContent composes without error. fillImage may be
// nil, in which case the purpose row carries no picture paragraph.
func ComposeSections(t *docx.Table, in content.LessonPlanInputs, c content.LessonContent, fillImage CellFiller) {
	composeCurriculum(t, in, c)
	composeResources(t, c.Resources)
	composeProcedure(t, c.Procedure, fillImage)
	composeEvaluation(t, c.Evaluation)
}

func numberedObjectives(objs []string) string {
	lines := make([]string, len(objs))
	for i, o := range objs {
		lines[i] = fmt.Sprintf("%d. %s", i+1, o)
	}
	return strings.Join(lines, "\n")
}

func composeCurriculum(t *docx.Table, in content.LessonPlanInputs, c content.LessonContent) {
	AddSectionHeader(t, SectionCurriculum)
	AddRow(t, "A. Content Standard", in.ContentStandard)
	AddRow(t, "B. Performance Standard", in.PerformanceStandard)

	// one paragraph, two markup passes
	row := t.AddRow()
	addBoldRun(row.Cell(0).Paragraph(), "C. Learning Competencies")
	p := row.Cell(1).Paragraph()
	addBoldRun(p, "Competency: ")
	WriteMarkup(p, in.LearningCompetency)
	addBoldRun(p, "\n\nObjectives:\n")
	WriteMarkup(p, numberedObjectives(c.Objectives()))

	AddRow(t, "D. Content", c.Topic)
	AddRow(t, "E. Integration", fmt.Sprintf("Within: %s\nAcross: %s", c.IntegrationWithin, c.IntegrationAcross))
}

func composeResources(t *docx.Table, r content.Resources) {
	AddSectionHeader(t, SectionResources)
	AddRow(t, "Teacher Guide", r.Guide)
	AddRow(t, "Learner’s Materials(LMs)", r.Materials)
	AddRow(t, "Textbooks", r.Textbook)
	AddRow(t, "Learning Resource (LR) Portal", r.Portal)
	AddRow(t, "Other Learning Resources", r.Other)
}

func composeProcedure(t *docx.Table, p content.Procedure, fillImage CellFiller) {
	AddSectionHeader(t, SectionProcedure)
	AddRow(t, "A. Activating Prior Knowledge", p.Review)

	row := t.AddRow()
	addBoldRun(row.Cell(0).Paragraph(), LabelLessonPurpose)
	cell := row.Cell(1)
	WriteMarkup(cell.Paragraph(), p.PurposeSituation)
	cell.Paragraph().AddRun("\n")
	if fillImage != nil {
		fillImage(cell)
	}
	cell.AddParagraph("\nVocabulary:\n" + p.Vocabulary)

	AddRow(t, "C. Developing Understanding", fmt.Sprintf(
		"Activity: %s\n\nExplicitation: %s\n\nGroup 1: %s\nGroup 2: %s\nGroup 3: %s",
		p.ActivityMain, p.Explicitation, p.Group1, p.Group2, p.Group3,
	))
	AddRow(t, "D. Making Generalization", p.Generalization)
}

func composeEvaluation(t *docx.Table, e content.Evaluation) {
	AddSectionHeader(t, SectionEvaluation)
	questions := e.Questions()
	numbered := make([]string, len(questions))
	for i, q := range questions {
		numbered[i] = EnsureNumber(i+1, q)
	}
	AddRow(t, "A. Assessment", numbered)
	AddRow(t, "B. Assignment", e.Assignment)
	AddRow(t, "C. Remarks", e.Remarks)
	AddRow(t, "D. Reflection", e.Reflection)
}
