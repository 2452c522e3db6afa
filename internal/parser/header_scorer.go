package parser

import (
	"strings"

	"smetaflow/internal/grid"
)

// ScoreCandidate взвешенный балл кандидата в [0,1]:
// заполненность колонок, широта ключевых слов, наличие строк данных ниже,
// позиция строки, отсутствие объединённых ячеек
func ScoreCandidate(c HeaderCandidate, g grid.Grid, maxCol int) float64 {
	score := weightFilledCols*filledColsScore(c.FilledCols) +
		weightKeywords*keywordScore(c.KeywordMatches) +
		weightStructural*structuralScore(g, c.Row, maxCol) +
		weightPosition*positionScore(c.Row) +
		weightMerged*mergedScore(c.MergedCells)

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// filledColsScore пик 1.0 на 8-15 колонках, спад по обе стороны
func filledColsScore(n int) float64 {
	switch {
	case n >= 8 && n <= 15:
		return 1.0
	case n < 8:
		return float64(n) / 8.0
	default:
		s := 1.0 - float64(n-15)*0.07
		if s < 0 {
			return 0
		}
		return s
	}
}

// keywordScore монотонно растёт по числу различных полей, насыщение на 6
func keywordScore(n int) float64 {
	if n >= 6 {
		return 1.0
	}
	return float64(n) / 6.0
}

// structuralScore 1.0, если хотя бы одна из следующих 10 строк смешивает
// числовые и текстовые ячейки минимум в двух колонках
func structuralScore(g grid.Grid, headerRow, maxCol int) float64 {
	for row := headerRow + 1; row <= headerRow+10 && row <= g.RowCount(); row++ {
		numeric, textual := 0, 0
		for col := 1; col <= maxCol; col++ {
			v := strings.TrimSpace(g.Cell(row, col))
			if v == "" {
				continue
			}
			if IsNumericText(v) {
				numeric++
			} else {
				textual++
			}
		}
		if numeric >= 1 && textual >= 1 && numeric+textual >= 2 {
			return 1.0
		}
	}
	return 0
}

// positionScore пик на строках 20-40, к началу листа спадает к нулю
func positionScore(row int) float64 {
	switch {
	case row >= 20 && row <= 40:
		return 1.0
	case row < 20:
		return float64(row) / 20.0
	default:
		s := 1.0 - float64(row-40)/60.0
		if s < 0 {
			return 0
		}
		return s
	}
}

// mergedScore 1.0 без объединённых ячеек, спад с их количеством
func mergedScore(n int) float64 {
	s := 1.0 - float64(n)*0.25
	if s < 0 {
		return 0
	}
	return s
}

// DetectHeader ищет строку заголовка перебором кандидатов.
// Лучший кандидат ниже порога — нулевая уверенность, а не принудительный выбор.
func DetectHeader(g grid.Grid, th Thresholds) DetectionResult {
	maxCol := RealMaxColumn(g)
	rows := g.RowCount()
	if rows > maxScanRows {
		rows = maxScanRows
	}

	best := DetectionResult{}
	bestScore := 0.0

	for row := 1; row <= rows; row++ {
		c := buildCandidate(g, row, maxCol)
		if c.FilledCols < 2 {
			continue
		}
		score := ScoreCandidate(c, g, maxCol)
		// при равенстве баллов остаётся первый (меньший) номер строки
		if score > bestScore {
			bestScore = score
			best.HeaderRow = row
		}
	}

	if bestScore < th.HeaderFloor || best.HeaderRow == 0 {
		return DetectionResult{}
	}

	headers, dataStart := ResolveHeaders(g, best.HeaderRow)
	best.Headers = headers
	best.DataStartRow = dataStart
	best.Confidence = bestScore
	return best
}

func buildCandidate(g grid.Grid, row, maxCol int) HeaderCandidate {
	c := HeaderCandidate{Row: row, MergedCells: g.MergedCellsInRow(row)}

	matched := make(map[string]bool)
	for col := 1; col <= maxCol; col++ {
		v := strings.TrimSpace(g.Cell(row, col))
		if v == "" {
			continue
		}
		c.FilledCols++
		norm := NormalizeHeader(v)
		for _, field := range fieldOrder {
			if matched[field] {
				continue
			}
			for _, kw := range fieldKeywords[field] {
				if strings.Contains(norm, kw) {
					matched[field] = true
					break
				}
			}
		}
	}
	c.KeywordMatches = len(matched)
	return c
}
