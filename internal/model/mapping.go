package model

import "time"

// канонические поля сметной строки
const (
	FieldPosition     = "position"      // порядковый номер позиции
	FieldCode         = "normative_code" // шифр расценки
	FieldName         = "item_name"
	FieldUnit         = "unit"
	FieldQuantity     = "quantity"
	FieldUnitPrice    = "unit_price"    // текущая цена за единицу
	FieldBasePrice    = "base_price"    // базисная цена
	FieldCurrentPrice = "current_price" // текущая стоимость
	FieldTotal        = "total"
	FieldPriceIndex   = "price_index" // индекс пересчёта
	FieldSection      = "section"
)

// RequiredFields поля, без которых маппинг считается неполным
var RequiredFields = []string{FieldName, FieldQuantity, FieldUnitPrice}

// MappingSource источник маппинга колонок
type MappingSource string

const (
	MappingFromMemory    MappingSource = "memory"
	MappingFromHeuristic MappingSource = "heuristic"
	MappingFromAI        MappingSource = "ai"
	MappingFromManual    MappingSource = "manual"
)

// ColumnMapping соответствие канонических полей колонкам листа.
// Несколько полей могут указывать на одну колонку (имя и единица в одной ячейке).
type ColumnMapping struct {
	Columns    map[string]int `json:"columns"` // поле -> колонка листа (1-based)
	Confidence float64        `json:"confidence"`
	Source     MappingSource  `json:"source"`
}

// Column возвращает колонку поля и признак её наличия
func (m ColumnMapping) Column(field string) (int, bool) {
	c, ok := m.Columns[field]
	return c, ok
}

// HasRequired проверяет наличие всех обязательных полей
func (m ColumnMapping) HasRequired() bool {
	for _, f := range RequiredFields {
		if _, ok := m.Columns[f]; !ok {
			return false
		}
	}
	return true
}

// SharedColumns возвращает поля, разделяющие одну колонку с другим полем
func (m ColumnMapping) SharedColumns() map[int][]string {
	byCol := make(map[int][]string)
	for field, col := range m.Columns {
		byCol[col] = append(byCol[col], field)
	}
	for col, fields := range byCol {
		if len(fields) < 2 {
			delete(byCol, col)
		}
	}
	return byCol
}

// MemoryRecord подтверждённый маппинг для известной сигнатуры заголовка
type MemoryRecord struct {
	ID             int64         `json:"id"`
	OrganizationID int64         `json:"organizationId"`
	FileFormat     string        `json:"fileFormat"`
	Signature      string        `json:"signature"`
	Mapping        ColumnMapping `json:"mapping"`
	SectionHints   []string      `json:"sectionHints,omitempty"`
	FooterHints    []string      `json:"footerHints,omitempty"`
	SuccessCount   int           `json:"successCount"`
	UsageCount     int           `json:"usageCount"`
	LastUsedAt     time.Time     `json:"lastUsedAt"`
	CreatedAt      time.Time     `json:"createdAt"`
}
