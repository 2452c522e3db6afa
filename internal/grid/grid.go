package grid

import "smetaflow/internal/model"

// Grid табличное представление источника: строки × колонки типизированных ячеек.
// Загрузка файла — забота внешнего слоя; ядро получает уже открытую сетку.
type Grid interface {
	// RowCount число строк листа по данным источника
	RowCount() int
	// ColCount число колонок по метаданным источника (может занижаться)
	ColCount() int
	// Cell текст ячейки ("" для пустой/отсутствующей); row и col 1-based
	Cell(row, col int) string
	// RowStyle визуальные подсказки строки
	RowStyle(row int) model.RowStyle
	// RowIndent отступ первой непустой ячейки строки
	RowIndent(row int) int
	// MergedCellsInRow число объединённых ячеек, пересекающих строку
	MergedCellsInRow(row int) int
}

// SliceGrid сетка в памяти; используется в тестах и для XML-источников,
// уже развёрнутых коллаборатором в таблицу
type SliceGrid struct {
	Rows    [][]string
	Styles  map[int]model.RowStyle
	Indents map[int]int
	Merged  map[int]int
}

// NewSliceGrid создаёт сетку из строк
func NewSliceGrid(rows [][]string) *SliceGrid {
	return &SliceGrid{Rows: rows}
}

func (g *SliceGrid) RowCount() int { return len(g.Rows) }

func (g *SliceGrid) ColCount() int {
	max := 0
	for _, r := range g.Rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

func (g *SliceGrid) Cell(row, col int) string {
	if row < 1 || row > len(g.Rows) {
		return ""
	}
	r := g.Rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

func (g *SliceGrid) RowStyle(row int) model.RowStyle {
	if g.Styles == nil {
		return model.RowStyle{}
	}
	return g.Styles[row]
}

func (g *SliceGrid) RowIndent(row int) int {
	if g.Indents == nil {
		return 0
	}
	return g.Indents[row]
}

func (g *SliceGrid) MergedCellsInRow(row int) int {
	if g.Merged == nil {
		return 0
	}
	return g.Merged[row]
}
