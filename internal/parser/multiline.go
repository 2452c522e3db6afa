package parser

import "smetaflow/internal/model"

// ParsePriceComponents разбирает многострочную ячейку стоимости.
// До пяти строк в порядке [всего, ОЗП, ЭМ, ЗПМ, материалы].
// Если ОЗП или ЭМ превышают итог более чем в componentGuard раз,
// в ячейку вклеились индексы/сноски: все три трудовые составляющие
// обнуляются как недостоверные.
func ParsePriceComponents(text string, componentGuard float64) *model.PriceComponents {
	lines := SplitPriceLines(text)
	if len(lines) == 0 {
		return nil
	}

	values := make([]float64, 0, 5)
	for _, line := range lines {
		if len(values) == 5 {
			break
		}
		v := ParseNumber(line)
		if v == nil {
			continue
		}
		values = append(values, *v)
	}
	if len(values) == 0 {
		return nil
	}

	c := &model.PriceComponents{Total: values[0]}
	if len(values) > 1 {
		c.Labor = values[1]
	}
	if len(values) > 2 {
		c.Machinery = values[2]
	}
	if len(values) > 3 {
		c.MachineryLabor = values[3]
	}
	if len(values) > 4 {
		c.Materials = values[4]
	}

	if c.Total > 0 && (c.Labor > c.Total*componentGuard || c.Machinery > c.Total*componentGuard) {
		c.Labor = 0
		c.Machinery = 0
		c.MachineryLabor = 0
	}

	return c
}
