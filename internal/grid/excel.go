package grid

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"smetaflow/internal/model"
)

// ExcelGrid адаптер листа excelize к интерфейсу Grid.
// Строки читаются один раз при создании; стили и объединённые
// ячейки запрашиваются лениво и кэшируются.
type ExcelGrid struct {
	file   *excelize.File
	sheet  string
	rows   [][]string
	styles map[int]model.RowStyle
	merged map[int]int
}

// OpenSheet строит сетку по листу книги; пустое имя — первый лист
func OpenSheet(f *excelize.File, sheet string) (*ExcelGrid, error) {
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return &ExcelGrid{
		file:   f,
		sheet:  sheet,
		rows:   rows,
		styles: make(map[int]model.RowStyle),
	}, nil
}

func (g *ExcelGrid) RowCount() int { return len(g.rows) }

func (g *ExcelGrid) ColCount() int {
	max := 0
	for _, r := range g.rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}

func (g *ExcelGrid) Cell(row, col int) string {
	if row < 1 || row > len(g.rows) {
		return ""
	}
	r := g.rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// RowStyle проверяет жирный шрифт/заливку первой непустой ячейки строки
func (g *ExcelGrid) RowStyle(row int) model.RowStyle {
	if st, ok := g.styles[row]; ok {
		return st
	}

	st := model.RowStyle{}
	col := g.firstFilledCol(row)
	if col > 0 {
		axis, err := excelize.CoordinatesToCellName(col, row)
		if err == nil {
			if styleID, err := g.file.GetCellStyle(g.sheet, axis); err == nil {
				if style, err := g.file.GetStyle(styleID); err == nil && style != nil {
					if style.Font != nil && style.Font.Bold {
						st.Bold = true
					}
					if style.Fill.Type == "pattern" && style.Fill.Pattern > 0 {
						st.Shaded = true
					}
				}
			}
		}
	}

	g.styles[row] = st
	return st
}

// RowIndent отступ по ведущим пробелам первой непустой ячейки
func (g *ExcelGrid) RowIndent(row int) int {
	col := g.firstFilledCol(row)
	if col == 0 {
		return 0
	}
	raw := g.Cell(row, col)
	return len(raw) - len(strings.TrimLeft(raw, " \t"))
}

func (g *ExcelGrid) MergedCellsInRow(row int) int {
	if g.merged == nil {
		g.merged = make(map[int]int)
		cells, err := g.file.GetMergeCells(g.sheet)
		if err == nil {
			for _, mc := range cells {
				_, r1, err1 := excelize.CellNameToCoordinates(mc.GetStartAxis())
				_, r2, err2 := excelize.CellNameToCoordinates(mc.GetEndAxis())
				if err1 != nil || err2 != nil {
					continue
				}
				for r := r1; r <= r2; r++ {
					g.merged[r]++
				}
			}
		}
	}
	return g.merged[row]
}

func (g *ExcelGrid) firstFilledCol(row int) int {
	if row < 1 || row > len(g.rows) {
		return 0
	}
	for i, v := range g.rows[row-1] {
		if strings.TrimSpace(v) != "" {
			return i + 1
		}
	}
	return 0
}
