package parser

import (
	"regexp"
	"strings"

	"smetaflow/internal/model"
)

// Decision вердикт предиката классификации
type Decision int

const (
	NoOpinion Decision = iota
	DecideItem
	DecideSection
	DecideFooter
)

// rowFacts факты о строке, доступные предикатам
type rowFacts struct {
	row   *model.MappedRow
	cells []string // нормализованные тексты всех ячеек
	style model.RowStyle
	hints Hints
}

// predicate именованный предикат; цепочка вычисляется по порядку,
// первый определённый вердикт выигрывает
type predicate struct {
	name string
	eval func(f *rowFacts) Decision
}

var sectionNumberingRe = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s+[А-ЯЁA-Z]`)

// classifyChain порядок закреплён: количественные строки не могут быть
// итогом или разделом; итоги распознаются раньше разделов
var classifyChain = []predicate{
	{
		name: "quantity_present",
		eval: func(f *rowFacts) Decision {
			if f.row.Quantity != nil && *f.row.Quantity > 0 {
				return DecideItem
			}
			return NoOpinion
		},
	},
	{
		name: "footer_total_only",
		eval: func(f *rowFacts) Decision {
			r := f.row
			if r.Total != nil && *r.Total > 0 &&
				(r.Quantity == nil || *r.Quantity == 0) &&
				(r.UnitPrice == nil || *r.UnitPrice == 0) {
				return DecideFooter
			}
			return NoOpinion
		},
	},
	{
		name: "footer_keyword",
		eval: func(f *rowFacts) Decision {
			for _, c := range f.cells {
				if ContainsAny(c, footerKeywords) {
					return DecideFooter
				}
			}
			return NoOpinion
		},
	},
	{
		name: "footer_hint",
		eval: func(f *rowFacts) Decision {
			if len(f.hints.FooterKeywords) == 0 {
				return NoOpinion
			}
			for _, c := range f.cells {
				if ContainsAny(c, f.hints.FooterKeywords) {
					return DecideFooter
				}
			}
			return NoOpinion
		},
	},
	{
		name: "section_style",
		eval: func(f *rowFacts) Decision {
			if f.style.Bold || f.style.Shaded {
				return DecideSection
			}
			return NoOpinion
		},
	},
	{
		name: "section_hint",
		eval: func(f *rowFacts) Decision {
			if len(f.hints.SectionKeywords) == 0 {
				return NoOpinion
			}
			for _, c := range f.cells {
				if ContainsAny(c, f.hints.SectionKeywords) {
					return DecideSection
				}
			}
			return NoOpinion
		},
	},
	{
		name: "section_keyword",
		eval: func(f *rowFacts) Decision {
			for _, c := range f.cells {
				if ContainsAny(c, sectionKeywords) {
					return DecideSection
				}
			}
			return NoOpinion
		},
	},
	{
		name: "section_numbering",
		eval: func(f *rowFacts) Decision {
			if sectionNumberingRe.MatchString(strings.TrimSpace(f.row.Name)) {
				return DecideSection
			}
			return NoOpinion
		},
	},
}

// classifyRow прогоняет цепочку предикатов; без вердикта строка — позиция
func classifyRow(f *rowFacts) Decision {
	for _, p := range classifyChain {
		if d := p.eval(f); d != NoOpinion {
			return d
		}
	}
	return DecideItem
}
