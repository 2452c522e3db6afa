package parser

import "smetaflow/internal/model"

// пределы сканирования листа: метаданные источника о последней
// колонке ненадёжны, фактический максимум ищется перебором
const (
	maxScanRows = 500
	maxScanCols = 100
)

// веса критериев оценки строки-кандидата на заголовок
const (
	weightFilledCols = 0.40
	weightKeywords   = 0.25
	weightStructural = 0.20
	weightPosition   = 0.10
	weightMerged     = 0.05
)

// HeaderCandidate строка-кандидат на заголовок таблицы
type HeaderCandidate struct {
	Row            int `json:"row"`
	FilledCols     int `json:"filledCols"`
	KeywordMatches int `json:"keywordMatches"` // число различных канонических полей, найденных в строке
	MergedCells    int `json:"mergedCells"`
}

// DetectionResult итог детекции структуры листа.
// Confidence 0 означает, что пригодного кандидата нет; это не ошибка —
// вызывающая сторона запрашивает ручной маппинг.
type DetectionResult struct {
	HeaderRow    int            `json:"headerRow"`
	DataStartRow int            `json:"dataStartRow"`
	Headers      map[int]string `json:"headers"`
	Confidence   float64        `json:"confidence"`
}

// Thresholds именованные пороги эвристик; значения по умолчанию
// подобраны эмпирически и переопределяются конфигурацией
type Thresholds struct {
	HeaderFloor      float64 // минимальный балл пригодного заголовка
	MappingCutoff    float64 // минимальная уверенность авто-маппинга колонки
	FormulaTolerance float64 // допуск расхождения количество*цена и итога
	ComponentGuard   float64 // доля от итога, выше которой компонент недостоверен
}

// DefaultThresholds пороги по умолчанию
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeaderFloor:      0.5,
		MappingCutoff:    0.45,
		FormulaTolerance: 0.05,
		ComponentGuard:   1.1,
	}
}

// Hints подсказки классификатору, накопленные в структуре сессии
type Hints struct {
	SectionKeywords []string
	FooterKeywords  []string
}

// сопоставление префикса шифра ресурса и его типа
var resourceCodeKinds = []struct {
	prefixes []string
	kind     model.ResourceKind
}{
	{[]string{"ФСЭМ", "ТСЭМ", "СЭМ"}, model.ResourceMachinery},
	{[]string{"ФССЦ", "ТССЦ", "ФСБЦ", "ССЦ"}, model.ResourceMaterial},
}
