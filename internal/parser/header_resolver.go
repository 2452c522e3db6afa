package parser

import (
	"strings"

	"smetaflow/internal/grid"
)

// RealMaxColumn фактическая последняя заполненная колонка листа.
// Метаданные источника могут занижать или завышать значение,
// поэтому сканируются первые maxScanRows строк и берётся максимум.
func RealMaxColumn(g grid.Grid) int {
	rows := g.RowCount()
	if rows > maxScanRows {
		rows = maxScanRows
	}

	scanned := 0
	for row := 1; row <= rows; row++ {
		for col := maxScanCols; col > scanned; col-- {
			if strings.TrimSpace(g.Cell(row, col)) != "" {
				scanned = col
				break
			}
		}
	}

	if reported := g.ColCount(); reported > scanned {
		return reported
	}
	return scanned
}

// ResolveHeaders собирает текст заголовка по колонкам.
// Если следующая строка текстовая (двухстрочный/объединённый заголовок),
// её значения заполняют пустые ячейки заголовка, а данные начинаются
// строкой ниже. Чистая функция от сетки.
func ResolveHeaders(g grid.Grid, headerRow int) (map[int]string, int) {
	maxCol := RealMaxColumn(g)
	headers := make(map[int]string)

	for col := 1; col <= maxCol; col++ {
		if v := strings.TrimSpace(g.Cell(headerRow, col)); v != "" {
			headers[col] = v
		}
	}

	dataStart := headerRow + 1
	if isTextualRow(g, headerRow+1, maxCol) {
		merged := false
		for col := 1; col <= maxCol; col++ {
			sub := strings.TrimSpace(g.Cell(headerRow+1, col))
			if sub == "" {
				continue
			}
			if _, filled := headers[col]; !filled {
				headers[col] = sub
				merged = true
			}
		}
		if merged {
			dataStart = headerRow + 2
		}
	}

	return headers, dataStart
}

// isTextualRow строка считается текстовой, когда непустых ячеек не меньше
// двух и среди них нет числовых: подзаголовок не содержит данных
func isTextualRow(g grid.Grid, row int, maxCol int) bool {
	filled := 0
	for col := 1; col <= maxCol; col++ {
		v := strings.TrimSpace(g.Cell(row, col))
		if v == "" {
			continue
		}
		filled++
		if IsNumericText(v) {
			return false
		}
	}
	return filled >= 2
}
