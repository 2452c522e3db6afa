package catalog_test

import (
	"testing"

	"smetaflow/internal/catalog"
)

func TestTrigramIdentical(t *testing.T) {
	if got := catalog.TrigramSimilarity("Кирпич керамический", "кирпич керамический"); got != 1.0 {
		t.Fatalf("TrigramSimilarity=%v, want 1.0 (регистр не значим)", got)
	}
}

func TestTrigramDisjoint(t *testing.T) {
	if got := catalog.TrigramSimilarity("бетон", "ёж"); got != 0 {
		t.Fatalf("TrigramSimilarity=%v, want 0", got)
	}
}

func TestTrigramEmpty(t *testing.T) {
	if got := catalog.TrigramSimilarity("", "бетон"); got != 0 {
		t.Fatalf("TrigramSimilarity с пустой строкой=%v, want 0", got)
	}
}

func TestTrigramSimilarNames(t *testing.T) {
	sim := catalog.TrigramSimilarity("Кирпич керамический одинарный", "Кирпич керамический")
	if sim <= 0.35 || sim >= 1 {
		t.Fatalf("TrigramSimilarity=%v, want в (0.35, 1)", sim)
	}

	other := catalog.TrigramSimilarity("Кирпич керамический", "Плита перекрытия железобетонная")
	if other >= sim {
		t.Fatalf("чужое наименование (%v) не менее похоже, чем родственное (%v)", other, sim)
	}
}

func TestTrigramWordOrder(t *testing.T) {
	a := catalog.TrigramSimilarity("керамический кирпич", "кирпич керамический")
	if a != 1.0 {
		t.Fatalf("TrigramSimilarity=%v, want 1.0 (триграммы по словам)", a)
	}
}
