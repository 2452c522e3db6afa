package parser

import "regexp"

// Attributes атрибуты, извлечённые из свободного текста строки:
// индекс пересчёта, накладные расходы (НР), сметная прибыль (СП)
type Attributes struct {
	PriceIndex     *float64
	OverheadRate   *float64 // НР в процентах
	OverheadAmount *float64 // НР суммой в скобках
	ProfitRate     *float64 // СП в процентах
	ProfitAmount   *float64 // СП суммой в скобках
}

// RE2 не поддерживает ретроспективные проверки, границы слов заданы
// явными классами: "нр"/"сп" не должны совпадать внутри слов
// ("справочно" не содержит атрибута СП)
var (
	indexKeywordRe = regexp.MustCompile(`(?i)(?:^|[^а-яёa-z])индекс[^0-9%]{0,40}?(\d+(?:[.,]\d+)?)`)
	indexSMRRe     = regexp.MustCompile(`(?i)(?:^|[^а-яёa-z])смр\s*[=:]?\s*(\d+(?:[.,]\d+)?)`)

	overheadRateRe   = regexp.MustCompile(`(?i)(?:^|[^а-яёa-z])(?:нр|накладные\s+расходы)\s*[=:]?\s*(\d+(?:[.,]\d+)?)\s*%`)
	overheadAmountRe = regexp.MustCompile(`(?i)(?:^|[^а-яёa-z])(?:нр|накладные\s+расходы)\s*\(\s*([\d  ]+(?:[.,]\d+)?)\s*(?:руб\.?)?\s*\)`)

	profitRateRe   = regexp.MustCompile(`(?i)(?:^|[^а-яёa-z])(?:сп|сметная\s+прибыль)\s*[=:]?\s*(\d+(?:[.,]\d+)?)\s*%`)
	profitAmountRe = regexp.MustCompile(`(?i)(?:^|[^а-яёa-z])(?:сп|сметная\s+прибыль)\s*\(\s*([\d  ]+(?:[.,]\d+)?)\s*(?:руб\.?)?\s*\)`)
)

// ExtractAttributes извлекает атрибуты из текста.
// Индекс: "индекс ... 5,43" или "СМР=5,43". НР/СП: процент или сумма в скобках.
func ExtractAttributes(text string) Attributes {
	var a Attributes

	if m := indexKeywordRe.FindStringSubmatch(text); m != nil {
		a.PriceIndex = ParseNumber(m[1])
	} else if m := indexSMRRe.FindStringSubmatch(text); m != nil {
		a.PriceIndex = ParseNumber(m[1])
	}

	if m := overheadRateRe.FindStringSubmatch(text); m != nil {
		a.OverheadRate = ParseNumber(m[1])
	}
	if m := overheadAmountRe.FindStringSubmatch(text); m != nil {
		a.OverheadAmount = ParseNumber(m[1])
	}

	if m := profitRateRe.FindStringSubmatch(text); m != nil {
		a.ProfitRate = ParseNumber(m[1])
	}
	if m := profitAmountRe.FindStringSubmatch(text); m != nil {
		a.ProfitAmount = ParseNumber(m[1])
	}

	return a
}
