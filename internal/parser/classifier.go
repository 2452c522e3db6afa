package parser

import (
	"regexp"
	"sort"
	"strings"

	"smetaflow/internal/model"
)

// Classifier превращает сырую строку в типизированную запись:
// извлечение полей по маппингу, разбор многострочных цен, обратное
// ценообразование, выделение единицы из наименования, классификация
type Classifier struct {
	mapping model.ColumnMapping
	th      Thresholds
	hints   Hints
}

// NewClassifier создаёт классификатор для активного маппинга
func NewClassifier(mapping model.ColumnMapping, th Thresholds, hints Hints) *Classifier {
	return &Classifier{mapping: mapping, th: th, hints: hints}
}

var (
	parentheticalRe = regexp.MustCompile(`\(([^()]{1,20})\)`)
	sectionPathRe   = regexp.MustCompile(`^(\d+(?:\.\d+)*)`)
)

// Classify обрабатывает одну строку; полностью пустые строки — шум (nil)
func (c *Classifier) Classify(raw model.RawRow) *model.MappedRow {
	cells := rowCells(raw)
	if len(cells) == 0 {
		return nil
	}

	r := &model.MappedRow{RowNumber: raw.Number, Indent: raw.Indent}
	c.extractFields(raw, r)
	c.splitNameUnit(r)
	c.applyAttributes(raw, r)
	c.derivePrices(r)

	r.Name = cleanName(r.RawName)
	if r.Name == "" {
		r.Name = r.RawName
	}

	facts := &rowFacts{
		row:   r,
		cells: normalizedCells(cells),
		style: raw.Style,
		hints: c.hints,
	}

	switch classifyRow(facts) {
	case DecideFooter:
		r.IsFooter = true
		r.ClearAmounts()
	case DecideSection:
		r.IsSection = true
		r.ClearAmounts()
		c.fillSection(raw, r)
	}

	return r
}

// extractFields извлекает канонические поля; пустая ячейка никогда
// не затирает уже заполненное поле
func (c *Classifier) extractFields(raw model.RawRow, r *model.MappedRow) {
	nameCol, _ := c.mapping.Column(model.FieldName)

	for _, field := range fieldOrder {
		col, ok := c.mapping.Column(field)
		if !ok {
			continue
		}
		text := strings.TrimSpace(raw.Cell(col))
		if text == "" {
			continue
		}

		switch field {
		case model.FieldPosition:
			r.Position = text
		case model.FieldCode:
			r.NormativeCode = text
		case model.FieldName:
			r.RawName = text
		case model.FieldUnit:
			// единица в одной колонке с именем разбирается отдельно
			if col != nameCol || r.RawName == "" {
				r.Unit = NormalizeUnit(firstLine(text))
			}
		case model.FieldQuantity:
			r.Quantity = ParseNumber(firstLine(text))
		case model.FieldUnitPrice:
			if comps := ParsePriceComponents(text, c.th.ComponentGuard); comps != nil {
				r.UnitPrice = ptr(comps.Total)
				if comps.Labor > 0 || comps.Machinery > 0 || comps.Materials > 0 {
					r.Components = comps
				}
			}
		case model.FieldBasePrice:
			r.BasePrice = ParseNumber(firstLine(text))
		case model.FieldCurrentPrice:
			if comps := ParsePriceComponents(text, c.th.ComponentGuard); comps != nil {
				r.CurrentPrice = ptr(comps.Total)
				if r.Components == nil && (comps.Labor > 0 || comps.Machinery > 0 || comps.Materials > 0) {
					r.Components = comps
				}
			}
		case model.FieldTotal:
			r.Total = ParseNumber(firstLine(text))
		case model.FieldPriceIndex:
			r.PriceIndex = ParseNumber(firstLine(text))
		}
	}
}

// splitNameUnit выделяет единицу измерения из наименования, когда поле
// единицы пусто или содержит обобщённое значение
func (c *Classifier) splitNameUnit(r *model.MappedRow) {
	if r.RawName == "" {
		return
	}
	if r.Unit != "" && !genericUnits[NormalizeHeader(r.Unit)] {
		return
	}

	name := r.RawName

	// скобочный токен из словаря единиц: "Кладка стен (м3)"
	for _, m := range parentheticalRe.FindAllStringSubmatch(name, -1) {
		if IsKnownUnit(m[1]) {
			r.Unit = NormalizeUnit(m[1])
			r.RawName = strings.TrimSpace(strings.Replace(name, m[0], "", 1))
			return
		}
	}

	// хвостовой короткий токен после запятой: "Бетон тяжелый, м3"
	if idx := strings.LastIndex(name, ","); idx > 0 {
		tail := strings.TrimSpace(name[idx+1:])
		if tail != "" && len([]rune(tail)) <= 10 && IsKnownUnit(tail) {
			r.Unit = NormalizeUnit(tail)
			r.RawName = strings.TrimSpace(name[:idx])
		}
	}
}

// applyAttributes дополняет строку атрибутами из свободного текста
func (c *Classifier) applyAttributes(raw model.RawRow, r *model.MappedRow) {
	joined := joinCells(raw)
	a := ExtractAttributes(joined)

	if r.PriceIndex == nil && a.PriceIndex != nil {
		r.PriceIndex = a.PriceIndex
	}
	r.OverheadRate = a.OverheadRate
	r.OverheadAmount = a.OverheadAmount
	r.ProfitRate = a.ProfitRate
	r.ProfitAmount = a.ProfitAmount
}

// derivePrices обратное ценообразование: базисная цена из текущей и индекса
func (c *Classifier) derivePrices(r *model.MappedRow) {
	if r.BasePrice != nil || r.PriceIndex == nil || *r.PriceIndex <= 0 {
		return
	}

	switch {
	case r.UnitPrice != nil && *r.UnitPrice > 0:
		r.BasePrice = ptr(*r.UnitPrice / *r.PriceIndex)
	case r.Total != nil && r.Quantity != nil && *r.Quantity > 0:
		r.BasePrice = ptr(*r.Total / *r.Quantity / *r.PriceIndex)
	}
}

// fillSection определяет путь раздела по нумерации в тексте строки
func (c *Classifier) fillSection(raw model.RawRow, r *model.MappedRow) {
	for _, text := range orderedCells(raw) {
		if m := sectionPathRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			r.SectionPath = m[1]
			break
		}
		// "Раздел 2. Фундаменты" — номер после ключевого слова
		norm := NormalizeHeader(text)
		for _, kw := range sectionKeywords {
			if strings.HasPrefix(norm, kw) {
				rest := strings.TrimSpace(norm[len(kw):])
				if m := sectionPathRe.FindStringSubmatch(rest); m != nil {
					r.SectionPath = m[1]
				}
				break
			}
		}
		if r.SectionPath != "" {
			break
		}
	}
}

// cleanName убирает из наименования служебные строки (индексы, НР/СП),
// попавшие в многострочную ячейку; исходный текст сохраняется в RawName
func cleanName(raw string) string {
	if raw == "" {
		return ""
	}
	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' })
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		norm := NormalizeHeader(trimmed)
		if hasTrashPrefix(norm) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}

func hasTrashPrefix(norm string) bool {
	for _, p := range trashLinePrefixes {
		if strings.HasPrefix(norm, p) {
			return true
		}
	}
	return false
}

func rowCells(raw model.RawRow) []string {
	out := make([]string, 0, len(raw.Cells))
	for _, v := range raw.Cells {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func orderedCells(raw model.RawRow) []string {
	cols := make([]int, 0, len(raw.Cells))
	for col := range raw.Cells {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		if strings.TrimSpace(raw.Cells[col]) != "" {
			out = append(out, raw.Cells[col])
		}
	}
	return out
}

func normalizedCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = NormalizeHeader(c)
	}
	return out
}

func joinCells(raw model.RawRow) string {
	return strings.Join(orderedCells(raw), " ")
}

func firstLine(s string) string {
	lines := SplitPriceLines(s)
	if len(lines) == 0 {
		return s
	}
	return lines[0]
}
