package parser_test

import (
	"testing"

	"smetaflow/internal/parser"
)

func TestExtractAttributesIndex(t *testing.T) {
	a := parser.ExtractAttributes("Индекс пересчета в текущие цены 5,43")
	if a.PriceIndex == nil || *a.PriceIndex != 5.43 {
		t.Fatalf("PriceIndex=%v, want 5.43", a.PriceIndex)
	}

	a = parser.ExtractAttributes("СМР=6,15")
	if a.PriceIndex == nil || *a.PriceIndex != 6.15 {
		t.Fatalf("PriceIndex=%v, want 6.15", a.PriceIndex)
	}
}

func TestExtractAttributesOverhead(t *testing.T) {
	a := parser.ExtractAttributes("НР 95%")
	if a.OverheadRate == nil || *a.OverheadRate != 95 {
		t.Fatalf("OverheadRate=%v, want 95", a.OverheadRate)
	}

	a = parser.ExtractAttributes("Накладные расходы (1 234,56 руб.)")
	if a.OverheadAmount == nil || *a.OverheadAmount != 1234.56 {
		t.Fatalf("OverheadAmount=%v, want 1234.56", a.OverheadAmount)
	}
}

func TestExtractAttributesProfit(t *testing.T) {
	a := parser.ExtractAttributes("СП 65%")
	if a.ProfitRate == nil || *a.ProfitRate != 65 {
		t.Fatalf("ProfitRate=%v, want 65", a.ProfitRate)
	}

	a = parser.ExtractAttributes("Сметная прибыль (500 руб.)")
	if a.ProfitAmount == nil || *a.ProfitAmount != 500 {
		t.Fatalf("ProfitAmount=%v, want 500", a.ProfitAmount)
	}
}

// "сп" внутри слова не является атрибутом
func TestExtractAttributesWordBoundary(t *testing.T) {
	a := parser.ExtractAttributes("Справочно: 65% от стоимости")
	if a.ProfitRate != nil {
		t.Fatalf("ProfitRate=%v для 'Справочно', want nil", *a.ProfitRate)
	}

	a = parser.ExtractAttributes("Укрепление насыпи 95%")
	if a.OverheadRate != nil {
		t.Fatalf("OverheadRate=%v без ключевого слова, want nil", *a.OverheadRate)
	}
}

func TestExtractAttributesEmpty(t *testing.T) {
	a := parser.ExtractAttributes("Разработка грунта экскаватором")
	if a.PriceIndex != nil || a.OverheadRate != nil || a.ProfitRate != nil {
		t.Fatalf("атрибуты из обычного наименования: %+v", a)
	}
}
