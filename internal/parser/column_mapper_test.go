package parser_test

import (
	"testing"

	"smetaflow/internal/model"
	"smetaflow/internal/parser"
)

const cutoff = 0.45

func TestMapColumnsTypical(t *testing.T) {
	headers := map[int]string{
		1: "№ п/п",
		2: "Шифр расценки",
		3: "Наименование работ и затрат",
		4: "Ед. изм.",
		5: "Кол-во",
		6: "Цена за единицу",
		7: "Всего",
	}

	m := parser.MapColumns(headers, cutoff)
	want := map[string]int{
		model.FieldPosition:  1,
		model.FieldCode:      2,
		model.FieldName:      3,
		model.FieldUnit:      4,
		model.FieldQuantity:  5,
		model.FieldUnitPrice: 6,
		model.FieldTotal:     7,
	}
	for field, col := range want {
		if got, ok := m.Columns[field]; !ok || got != col {
			t.Fatalf("Columns[%s]=%d (%v), want %d", field, got, ok, col)
		}
	}
	if !m.HasRequired() {
		t.Fatalf("HasRequired=false для полного набора колонок")
	}
	if m.Source != model.MappingFromHeuristic {
		t.Fatalf("Source=%s, want heuristic", m.Source)
	}
	if m.Confidence <= 0 || m.Confidence > 1 {
		t.Fatalf("Confidence=%v вне (0,1]", m.Confidence)
	}
}

func TestMapColumnsExactBeatsSubstring(t *testing.T) {
	headers := map[int]string{
		1: "количество",
		2: "количество смен работы",
	}
	m := parser.MapColumns(headers, cutoff)
	if got := m.Columns[model.FieldQuantity]; got != 1 {
		t.Fatalf("Columns[quantity]=%d, want 1 (точное совпадение сильнее)", got)
	}
}

func TestMapColumnsFieldUsedOnce(t *testing.T) {
	headers := map[int]string{1: "итого", 2: "итого"}
	m := parser.MapColumns(headers, cutoff)
	if got := m.Columns[model.FieldTotal]; got != 1 {
		t.Fatalf("Columns[total]=%d, want 1 (при равных баллах меньшая колонка)", got)
	}
	if len(m.Columns) != 1 {
		t.Fatalf("len(Columns)=%d, want 1", len(m.Columns))
	}
}

func TestMapColumnsCutoff(t *testing.T) {
	headers := map[int]string{1: "примечание", 2: "ответственный"}
	m := parser.MapColumns(headers, cutoff)
	if len(m.Columns) != 0 {
		t.Fatalf("Columns=%v, want пусто ниже порога", m.Columns)
	}
	if m.Confidence != 0 {
		t.Fatalf("Confidence=%v, want 0", m.Confidence)
	}
}

// имя и единица измерения в одной колонке
func TestMapColumnsSharedNameUnit(t *testing.T) {
	headers := map[int]string{
		1: "Наименование работ, ед. изм.",
		2: "Кол-во",
		3: "Цена",
	}
	m := parser.MapColumns(headers, cutoff)

	nameCol, ok := m.Columns[model.FieldName]
	if !ok {
		t.Fatalf("имя не замаплено: %v", m.Columns)
	}
	unitCol, ok := m.Columns[model.FieldUnit]
	if !ok || unitCol != nameCol {
		t.Fatalf("Columns[unit]=%d (%v), want %d (общая колонка)", unitCol, ok, nameCol)
	}

	shared := m.SharedColumns()
	if len(shared[nameCol]) != 2 {
		t.Fatalf("SharedColumns=%v, want имя и единица на колонке %d", shared, nameCol)
	}
}
