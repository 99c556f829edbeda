package content

// LessonContent is the normalized lesson body: every field is a plain string
// and every default has been applied. It serializes with the same keys the
// model is asked to produce, so it can be fed back in for re-rendering.
type LessonContent struct {
	Obj1              string     `json:"obj_1"`
	Obj2              string     `json:"obj_2"`
	Obj3              string     `json:"obj_3"`
	Topic             string     `json:"topic"`
	IntegrationWithin string     `json:"integration_within"`
	IntegrationAcross string     `json:"integration_across"`
	Resources         Resources  `json:"resources"`
	Procedure         Procedure  `json:"procedure"`
	Evaluation        Evaluation `json:"evaluation"`
}

type Resources struct {
	Guide     string `json:"guide"`
	Materials string `json:"materials"`
	Textbook  string `json:"textbook"`
	Portal    string `json:"portal"`
	Other     string `json:"other"`
}

type Procedure struct {
	Review           string `json:"review"`
	PurposeSituation string `json:"purpose_situation"`
	VisualPrompt     string `json:"visual_prompt"`
	Vocabulary       string `json:"vocabulary"`
	ActivityMain     string `json:"activity_main"`
	Explicitation    string `json:"explicitation"`
	Group1           string `json:"group_1"`
	Group2           string `json:"group_2"`
	Group3           string `json:"group_3"`
	Generalization   string `json:"generalization"`
}

type Evaluation struct {
	AssessQ1   string `json:"assess_q1"`
	AssessQ2   string `json:"assess_q2"`
	AssessQ3   string `json:"assess_q3"`
	AssessQ4   string `json:"assess_q4"`
	AssessQ5   string `json:"assess_q5"`
	Assignment string `json:"assignment"`
	Remarks    string `json:"remarks"`
	Reflection string `json:"reflection"`
}

func (c LessonContent) Objectives() []string {
	return []string{c.Obj1, c.Obj2, c.Obj3}
}

func (e Evaluation) Questions() []string {
	return []string{e.AssessQ1, e.AssessQ2, e.AssessQ3, e.AssessQ4, e.AssessQ5}
}
