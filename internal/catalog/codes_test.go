package catalog_test

import (
	"testing"

	"smetaflow/internal/catalog"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct{ in, want string }{
		{"фер 01-01-001-01", "ФЕР01-01-001-01"},
		{"ГЭСН 01—01—001—01", "ГЭСН01-01-001-01"},
		{"  фссц_101.0001 ", "ФССЦ-101.0001"},
		{"", ""},
	}
	for _, c := range cases {
		if got := catalog.NormalizeCode(c.in); got != c.want {
			t.Fatalf("NormalizeCode(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestRecognizeFamily(t *testing.T) {
	cases := []struct {
		code string
		want catalog.CodeFamily
	}{
		{"ГЭСН01-01-001-01", catalog.FamilyGESN},
		{"гэснм02-03-004-05", catalog.FamilyGESN},
		{"ФЕР01-01-001-01", catalog.FamilyFER},
		{"ТЕРр05-01-001-01", catalog.FamilyFER},
		{"ФССЦ-01.7.03.01-0001", catalog.FamilyFSSC},
		{"ФСЭМ-91.05.01-017", catalog.FamilyFSEM},
		{"01.7.03.01-0001", catalog.FamilyKSR},
		{"1-100-25", catalog.FamilyRegional},
		{"просто текст", catalog.FamilyUnknown},
	}
	for _, c := range cases {
		if got := catalog.RecognizeFamily(c.code); got != c.want {
			t.Fatalf("RecognizeFamily(%q)=%q, want %q", c.code, got, c.want)
		}
	}
}

func TestCodeVariantsOrder(t *testing.T) {
	variants := catalog.CodeVariants("фер 01-01-001-01")
	if len(variants) == 0 {
		t.Fatalf("CodeVariants пуст")
	}
	if variants[0] != "ФЕР01-01-001-01" {
		t.Fatalf("variants[0]=%q, want нормализованный исходный", variants[0])
	}

	seen := map[string]bool{}
	hasStripped := false
	for _, v := range variants {
		if seen[v] {
			t.Fatalf("дубликат варианта %q", v)
		}
		seen[v] = true
		if v == "01-01-001-01" {
			hasStripped = true
		}
	}
	if !hasStripped {
		t.Fatalf("нет варианта без префикса: %v", variants)
	}
}

func TestCodeVariantsAddsPrefixes(t *testing.T) {
	variants := catalog.CodeVariants("01-01-001-01")
	found := false
	for _, v := range variants {
		if v == "ФЕР01-01-001-01" {
			found = true
		}
	}
	if !found {
		t.Fatalf("нет варианта с префиксом ФЕР: %v", variants)
	}
}

func TestCodeVariantsEmpty(t *testing.T) {
	if v := catalog.CodeVariants("  "); v != nil {
		t.Fatalf("CodeVariants(пусто)=%v, want nil", v)
	}
}
