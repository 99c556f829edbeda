package content

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidInput = errors.New("invalid lesson plan input")

// LessonPlanInputs are the user-supplied scalars of one lesson plan.
type LessonPlanInputs struct {
	Subject             string `json:"subject"`
	GradeLevel          string `json:"grade_level"`
	Quarter             string `json:"quarter"`
	ContentStandard     string `json:"content_standard"`
	PerformanceStandard string `json:"performance_standard"`
	LearningCompetency  string `json:"learning_competency"`
}

var (
	GradeLevels = func() []string {
		out := make([]string, 0, 12)
		for i := 1; i <= 12; i++ {
			out = append(out, fmt.Sprintf("Grade %d", i))
		}
		return out
	}()
	Quarters = []string{"1st Quarter", "2nd Quarter", "3rd Quarter", "4th Quarter"}
)

func DefaultInputs() LessonPlanInputs {
	return LessonPlanInputs{
		Subject:             "Mathematics",
		GradeLevel:          GradeLevels[0],
		Quarter:             Quarters[0],
		ContentStandard:     "The learner demonstrates understanding of...",
		PerformanceStandard: "The learner is able to...",
		LearningCompetency:  "Solves problems involving...",
	}
}

// WithDefaults trims every field and fills a blank subject, grade or quarter
// from DefaultInputs. The standards and competency are free text the teacher
// owns, so blanks stay blank rather than becoming form placeholder text.
func (in LessonPlanInputs) WithDefaults() LessonPlanInputs {
	def := DefaultInputs()
	pick := func(v, d string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return d
	}
	return LessonPlanInputs{
		Subject:             pick(in.Subject, def.Subject),
		GradeLevel:          pick(in.GradeLevel, def.GradeLevel),
		Quarter:             pick(in.Quarter, def.Quarter),
		ContentStandard:     strings.TrimSpace(in.ContentStandard),
		PerformanceStandard: strings.TrimSpace(in.PerformanceStandard),
		LearningCompetency:  strings.TrimSpace(in.LearningCompetency),
	}
}

func (in LessonPlanInputs) Validate() error {
	if strings.TrimSpace(in.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if !contains(GradeLevels, in.GradeLevel) {
		return fmt.Errorf("%w: grade level %q (want Grade 1 to Grade 12)", ErrInvalidInput, in.GradeLevel)
	}
	if !contains(Quarters, in.Quarter) {
		return fmt.Errorf("%w: quarter %q (want one of %s)", ErrInvalidInput, in.Quarter, strings.Join(Quarters, ", "))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
