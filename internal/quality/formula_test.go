package quality_test

import (
	"strings"
	"testing"

	"smetaflow/internal/model"
	"smetaflow/internal/quality"
)

const tolerance = 0.05

func ptr(v float64) *float64 { return &v }

func TestCheckFormulasConsistent(t *testing.T) {
	r := &model.MappedRow{
		Quantity:  ptr(100),
		UnitPrice: ptr(500),
		Total:     ptr(50000),
	}
	quality.CheckFormulas(r, tolerance)
	if r.HasMathMismatch {
		t.Fatalf("HasMathMismatch=true для согласованной строки: %v", r.Warnings)
	}
}

func TestCheckFormulasWithinTolerance(t *testing.T) {
	// расхождение 3.8% не превышает допуск 5%
	r := &model.MappedRow{
		Quantity:  ptr(100),
		UnitPrice: ptr(500),
		Total:     ptr(52000),
	}
	quality.CheckFormulas(r, tolerance)
	if r.HasMathMismatch {
		t.Fatalf("HasMathMismatch=true внутри допуска")
	}
}

func TestCheckFormulasMismatch(t *testing.T) {
	r := &model.MappedRow{
		Quantity:  ptr(100),
		UnitPrice: ptr(500),
		Total:     ptr(60000),
	}
	quality.CheckFormulas(r, tolerance)
	if !r.HasMathMismatch {
		t.Fatalf("HasMathMismatch=false при расхождении 20%%")
	}
	if len(r.Warnings) == 0 || !strings.Contains(r.Warnings[0], "итог") {
		t.Fatalf("Warnings=%v, want текст о расхождении с итогом", r.Warnings)
	}
}

func TestCheckFormulasBaseIndex(t *testing.T) {
	r := &model.MappedRow{
		BasePrice:    ptr(100),
		PriceIndex:   ptr(5.43),
		CurrentPrice: ptr(800),
	}
	quality.CheckFormulas(r, tolerance)
	if !r.HasMathMismatch {
		t.Fatalf("HasMathMismatch=false: базисная*индекс=543 против текущей 800")
	}
}

func TestCheckFormulasSkipsSectionsAndFooters(t *testing.T) {
	r := &model.MappedRow{IsSection: true, Quantity: ptr(10), UnitPrice: ptr(10), Total: ptr(999)}
	quality.CheckFormulas(r, tolerance)
	if r.HasMathMismatch {
		t.Fatalf("раздел получил предупреждение арифметики")
	}
}

func TestCheckFormulasIncomplete(t *testing.T) {
	r := &model.MappedRow{Quantity: ptr(10), UnitPrice: ptr(100)}
	quality.CheckFormulas(r, tolerance)
	if r.HasMathMismatch || len(r.Warnings) != 0 {
		t.Fatalf("неполная строка получила предупреждение: %v", r.Warnings)
	}
}
