package ai_test

import (
	"testing"

	"smetaflow/internal/ai"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  ```json\n{}\n```  ", "{}"},
	}
	for _, c := range cases {
		if got := ai.StripCodeFences(c.in); got != c.want {
			t.Fatalf("StripCodeFences(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractFirstJSON(t *testing.T) {
	cases := []struct{ in, want string }{
		{`Вот результат: {"item_name": 1} — готово`, `{"item_name": 1}`},
		{`{"a": {"b": 2}} {"c": 3}`, `{"a": {"b": 2}}`},
		{`{"text": "скобка } в строке", "n": 1}`, `{"text": "скобка } в строке", "n": 1}`},
		{`{"esc": "кавычка \" и } тоже", "n": 2}`, `{"esc": "кавычка \" и } тоже", "n": 2}`},
		{"ответа нет", ""},
		{`{"незакрытый": 1`, ""},
	}
	for _, c := range cases {
		if got := ai.ExtractFirstJSON(c.in); got != c.want {
			t.Fatalf("ExtractFirstJSON(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}
