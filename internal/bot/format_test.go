package bot

import (
	"strings"
	"testing"
)

func TestFormatInterpretationHeaders(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"markdown heading",
			"### Прошлое:\nБыло трудно.",
			"<b>Прошлое</b>:\nБыло трудно.",
		},
		{
			"bold header",
			"**Настоящее**: всё спокойно",
			"<b>Настоящее</b>: всё спокойно",
		},
		{
			"bare header",
			"Будущее: перемены",
			"<b>Будущее</b>: перемены",
		},
		{
			"summary header",
			"Общее толкование: держись курса",
			"<b>Общее толкование</b>: держись курса",
		},
		{
			"inline bold",
			"Карта **Башня** предупреждает",
			"Карта <b>Башня</b> предупреждает",
		},
		{
			"stray heading markers dropped",
			"### Итог\nвсё будет хорошо",
			"Итог\nвсё будет хорошо",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatInterpretation(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatInterpretationFullAnswer(t *testing.T) {
	in := "### Прошлое:\nты искал ответы\n\n**Настоящее**: покой\n\nБудущее: дорога\n\nОбщее толкование: доверься себе"
	got := FormatInterpretation(in)
	for _, header := range []string{"<b>Прошлое</b>:", "<b>Настоящее</b>:", "<b>Будущее</b>:", "<b>Общее толкование</b>:"} {
		if !strings.Contains(got, header) {
			t.Fatalf("missing %s in %q", header, got)
		}
	}
	if strings.Contains(got, "#") || strings.Contains(got, "**") {
		t.Fatalf("markdown leaked through: %q", got)
	}
}
