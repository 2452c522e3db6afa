package quality

import (
	"fmt"
	"math"

	"smetaflow/internal/model"
)

// CheckFormulas проверяет арифметическую согласованность строки.
// Расхождение — предупреждение в строке, не ошибка сессии.
func CheckFormulas(r *model.MappedRow, tolerance float64) {
	if r.IsSection || r.IsFooter {
		return
	}

	if r.Quantity != nil && r.UnitPrice != nil && r.Total != nil && *r.Total > 0 {
		expected := *r.Quantity * *r.UnitPrice
		if relativeDelta(expected, *r.Total) > tolerance {
			r.HasMathMismatch = true
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"количество*цена = %.2f расходится с итогом %.2f более чем на %.0f%%",
				expected, *r.Total, tolerance*100))
		}
	}

	if r.BasePrice != nil && r.PriceIndex != nil && r.CurrentPrice != nil && *r.CurrentPrice > 0 {
		expected := *r.BasePrice * *r.PriceIndex
		if relativeDelta(expected, *r.CurrentPrice) > tolerance {
			r.HasMathMismatch = true
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"базисная цена*индекс = %.2f расходится с текущей ценой %.2f",
				expected, *r.CurrentPrice))
		}
	}
}

func relativeDelta(expected, actual float64) float64 {
	if actual == 0 {
		if expected == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(expected-actual) / math.Abs(actual)
}
