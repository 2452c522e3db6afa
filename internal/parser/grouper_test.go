package parser_test

import (
	"testing"

	"smetaflow/internal/model"
	"smetaflow/internal/parser"
)

func work(name, position string) *model.MappedRow {
	return &model.MappedRow{Name: name, Position: position}
}

func TestGroupAttachesResources(t *testing.T) {
	rows := []*model.MappedRow{
		work("Кладка стен", "1"),
		{Name: "Материал: кирпич керамический"},
		{Name: "Раствор", NormativeCode: "ФССЦ-404.0001"},
		work("Монтаж плит", "2"),
	}

	cursor := parser.NewGroupingCursor()
	parser.Group(rows, 0, cursor)

	for i := 1; i <= 2; i++ {
		if !rows[i].IsSubItem {
			t.Fatalf("rows[%d].IsSubItem=false, want ресурс", i)
		}
		if rows[i].ParentIndex == nil || *rows[i].ParentIndex != 0 {
			t.Fatalf("rows[%d].ParentIndex=%v, want 0", i, rows[i].ParentIndex)
		}
	}
	if rows[1].ResourceKind != model.ResourceMaterial {
		t.Fatalf("ResourceKind=%s, want material", rows[1].ResourceKind)
	}
	if rows[3].IsSubItem {
		t.Fatalf("работа с собственным номером помечена ресурсом")
	}
	if cursor.LastWorkIndex != 3 {
		t.Fatalf("LastWorkIndex=%d, want 3", cursor.LastWorkIndex)
	}
}

// явный целочисленный номер позиции сильнее прочих признаков
func TestGroupExplicitPositionOverride(t *testing.T) {
	rows := []*model.MappedRow{
		work("Кладка стен", "1"),
		{Name: "Материал: утеплитель", Position: "2", Indent: 4},
	}

	parser.Group(rows, 0, parser.NewGroupingCursor())
	if rows[1].IsSubItem {
		t.Fatalf("строка с номером позиции помечена ресурсом")
	}
}

func TestGroupSectionResetsCursor(t *testing.T) {
	rows := []*model.MappedRow{
		work("Кладка стен", "1"),
		{Name: "Раздел 2", IsSection: true},
		{Name: "Материал: кирпич"},
	}

	parser.Group(rows, 0, parser.NewGroupingCursor())
	if rows[2].IsSubItem {
		t.Fatalf("ресурс привязан через границу раздела")
	}
}

func TestGroupIndentation(t *testing.T) {
	rows := []*model.MappedRow{
		work("Монтаж конструкций", ""),
		{Name: "Болты анкерные", Indent: 4},
	}
	rows[0].Indent = 0

	parser.Group(rows, 0, parser.NewGroupingCursor())
	if !rows[1].IsSubItem {
		t.Fatalf("отступ не дал признака ресурса")
	}
}

// курсор переносит привязку через границу батча
func TestGroupCursorAcrossBatches(t *testing.T) {
	cursor := parser.NewGroupingCursor()

	batch1 := []*model.MappedRow{work("Кладка стен", "1")}
	parser.Group(batch1, 0, cursor)

	batch2 := []*model.MappedRow{{Name: "Материал: кирпич"}}
	parser.Group(batch2, 1, cursor)

	if !batch2[0].IsSubItem {
		t.Fatalf("ресурс из следующего батча не привязан")
	}
	if batch2[0].ParentIndex == nil || *batch2[0].ParentIndex != 0 {
		t.Fatalf("ParentIndex=%v, want 0 (работа из предыдущего батча)", batch2[0].ParentIndex)
	}
}

func TestGroupFooterSkipped(t *testing.T) {
	rows := []*model.MappedRow{
		work("Кладка стен", "1"),
		{Name: "Итого", IsFooter: true},
		{Name: "Материал: кирпич"},
	}

	cursor := parser.NewGroupingCursor()
	parser.Group(rows, 0, cursor)
	if rows[1].IsSubItem {
		t.Fatalf("итоговая строка помечена ресурсом")
	}
	if !rows[2].IsSubItem {
		t.Fatalf("итоговая строка разорвала привязку ресурса")
	}
}

func TestResolveResourceKind(t *testing.T) {
	cases := []struct {
		row  model.MappedRow
		want model.ResourceKind
	}{
		{model.MappedRow{NormativeCode: "ФСЭМ-91.05.01-017"}, model.ResourceMachinery},
		{model.MappedRow{NormativeCode: "ФССЦ-101.0001"}, model.ResourceMaterial},
		{model.MappedRow{Name: "ОТ: затраты труда рабочих"}, model.ResourceLabor},
		{model.MappedRow{Name: "Эксплуатация машин и механизмов"}, model.ResourceMachinery},
		{model.MappedRow{Name: "Кирпич керамический"}, model.ResourceMaterial},
	}
	for _, c := range cases {
		r := c.row
		if got := parser.ResolveResourceKind(&r); got != c.want {
			t.Fatalf("ResolveResourceKind(%+v)=%s, want %s", c.row, got, c.want)
		}
	}
}
