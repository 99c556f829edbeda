package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Raw is the model's JSON reply as decoded at the boundary. Every field is
// optional; unknown keys are ignored.
type Raw struct {
	Obj1              Text          `json:"obj_1"`
	Obj2              Text          `json:"obj_2"`
	Obj3              Text          `json:"obj_3"`
	Topic             Text          `json:"topic"`
	IntegrationWithin Text          `json:"integration_within"`
	IntegrationAcross Text          `json:"integration_across"`
	Resources         RawResources  `json:"resources"`
	Procedure         RawProcedure  `json:"procedure"`
	Evaluation        RawEvaluation `json:"evaluation"`
}

type RawResources struct {
	Guide     Text `json:"guide"`
	Materials Text `json:"materials"`
	Textbook  Text `json:"textbook"`
	Portal    Text `json:"portal"`
	Other     Text `json:"other"`
}

type RawProcedure struct {
	Review           Text `json:"review"`
	PurposeSituation Text `json:"purpose_situation"`
	VisualPrompt     Text `json:"visual_prompt"`
	Vocabulary       Text `json:"vocabulary"`
	ActivityMain     Text `json:"activity_main"`
	Explicitation    Text `json:"explicitation"`
	Group1           Text `json:"group_1"`
	Group2           Text `json:"group_2"`
	Group3           Text `json:"group_3"`
	Generalization   Text `json:"generalization"`
}

type RawEvaluation struct {
	AssessQ1   Text `json:"assess_q1"`
	AssessQ2   Text `json:"assess_q2"`
	AssessQ3   Text `json:"assess_q3"`
	AssessQ4   Text `json:"assess_q4"`
	AssessQ5   Text `json:"assess_q5"`
	Assignment Text `json:"assignment"`
	Remarks    Text `json:"remarks"`
	Reflection Text `json:"reflection"`
}

// A section that is not a JSON object (a string, a list, null) is treated as
// absent rather than failing the whole decode.

func (r *RawResources) UnmarshalJSON(b []byte) error {
	type plain RawResources
	*r = RawResources{}
	return unmarshalSection(b, (*plain)(r))
}

func (r *RawProcedure) UnmarshalJSON(b []byte) error {
	type plain RawProcedure
	*r = RawProcedure{}
	return unmarshalSection(b, (*plain)(r))
}

func (r *RawEvaluation) UnmarshalJSON(b []byte) error {
	type plain RawEvaluation
	*r = RawEvaluation{}
	return unmarshalSection(b, (*plain)(r))
}

func unmarshalSection(b []byte, dst any) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	return json.Unmarshal(b, dst)
}

const (
	DefaultVisualPrompt = "school"
	questionCount       = 5
)

// Normalize applies every default once, producing plain strings.
func (r Raw) Normalize() LessonContent {
	e := r.Evaluation
	questions := [questionCount]Text{e.AssessQ1, e.AssessQ2, e.AssessQ3, e.AssessQ4, e.AssessQ5}
	var q [questionCount]string
	for i, t := range questions {
		q[i] = t.Or(fmt.Sprintf("Question %d", i+1))
	}

	p := r.Procedure
	return LessonContent{
		Obj1:              r.Obj1.Value,
		Obj2:              r.Obj2.Value,
		Obj3:              r.Obj3.Value,
		Topic:             r.Topic.Value,
		IntegrationWithin: r.IntegrationWithin.Value,
		IntegrationAcross: r.IntegrationAcross.Value,
		Resources: Resources{
			Guide:     r.Resources.Guide.Value,
			Materials: r.Resources.Materials.Value,
			Textbook:  r.Resources.Textbook.Value,
			Portal:    r.Resources.Portal.Value,
			Other:     r.Resources.Other.Value,
		},
		Procedure: Procedure{
			Review:           p.Review.Value,
			PurposeSituation: p.PurposeSituation.Value,
			VisualPrompt:     p.VisualPrompt.Or(DefaultVisualPrompt),
			Vocabulary:       p.Vocabulary.Value,
			ActivityMain:     p.ActivityMain.Value,
			Explicitation:    p.Explicitation.Value,
			Group1:           p.Group1.Value,
			Group2:           p.Group2.Value,
			Group3:           p.Group3.Value,
			Generalization:   p.Generalization.Value,
		},
		Evaluation: Evaluation{
			AssessQ1:   q[0],
			AssessQ2:   q[1],
			AssessQ3:   q[2],
			AssessQ4:   q[3],
			AssessQ5:   q[4],
			Assignment: e.Assignment.Value,
			Remarks:    e.Remarks.Value,
			Reflection: e.Reflection.Value,
		},
	}
}
