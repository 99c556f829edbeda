package lessonplan

import "testing"

func TestFileName(t *testing.T) {
	cases := map[[2]string]string{
		{"Mathematics", "Grade 1"}:  "DLP_Mathematics_Grade 1.docx",
		{" Science ", "Grade 10"}:   "DLP_Science_Grade 10.docx",
		{"Arts/Music", "Grade 2"}:   "DLP_Arts-Music_Grade 2.docx",
		{`..\x`, "Grade 3"}:         "DLP_..-x_Grade 3.docx",
	}
	for in, want := range cases {
		if got := FileName(in[0], in[1]); got != want {
			t.Errorf("FileName(%q, %q): want=%q got=%q", in[0], in[1], want, got)
		}
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault("  ", DefaultTeacherName) != DefaultTeacherName {
		t.Fatalf("blank should fall back")
	}
	if OrDefault(" Ana ", DefaultTeacherName) != "Ana" {
		t.Fatalf("value should be trimmed")
	}
}
