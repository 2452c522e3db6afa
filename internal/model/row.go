package model

// RawRow необработанная строка источника: разреженный набор ячеек по колонкам.
// После чтения из файла не изменяется.
type RawRow struct {
	Number int            // номер строки листа (1-based)
	Cells  map[int]string // колонка -> текст ячейки
	Indent int            // уровень отступа первой непустой ячейки
	Style  RowStyle
}

// Cell возвращает текст ячейки колонки ("" для пустой)
func (r RawRow) Cell(col int) string {
	return r.Cells[col]
}

// ResourceKind тип ресурсной подпозиции
type ResourceKind string

const (
	ResourceMaterial  ResourceKind = "material"
	ResourceMachinery ResourceKind = "machinery"
	ResourceLabor     ResourceKind = "labor"
)

// PriceAnomaly результат статистической проверки цены
type PriceAnomaly struct {
	Direction string  `json:"direction"` // high/low
	ZScore    float64 `json:"zScore"`
	Mean      float64 `json:"mean"`
}

// PriceComponents составляющие многострочной ячейки стоимости:
// [всего, ОЗП, ЭМ, ЗПМ, материалы]
type PriceComponents struct {
	Total          float64 `json:"total"`
	Labor          float64 `json:"labor"`
	Machinery      float64 `json:"machinery"`
	MachineryLabor float64 `json:"machineryLabor"`
	Materials      float64 `json:"materials"`
}

// MappedRow типизированная строка после классификации.
// После группировки изменяются только ParentIndex/ParentWorkID.
type MappedRow struct {
	RowNumber int    `json:"rowNumber"`
	Indent    int    `json:"indent,omitempty"`   // уровень отступа исходной строки
	Position  string `json:"position,omitempty"` // номер позиции как в источнике

	Name          string `json:"name"`
	RawName       string `json:"rawName,omitempty"` // имя до очистки от служебных строк
	Unit          string `json:"unit,omitempty"`
	NormativeCode string `json:"normativeCode,omitempty"`
	SectionPath   string `json:"sectionPath,omitempty"`

	Quantity     *float64 `json:"quantity,omitempty"`
	UnitPrice    *float64 `json:"unitPrice,omitempty"` // текущая цена за единицу
	BasePrice    *float64 `json:"basePrice,omitempty"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
	Total        *float64 `json:"total,omitempty"`
	PriceIndex   *float64 `json:"priceIndex,omitempty"`

	Components *PriceComponents `json:"components,omitempty"`

	OverheadRate   *float64 `json:"overheadRate,omitempty"`   // НР, %
	OverheadAmount *float64 `json:"overheadAmount,omitempty"` // НР, сумма
	ProfitRate     *float64 `json:"profitRate,omitempty"`     // СП, %
	ProfitAmount   *float64 `json:"profitAmount,omitempty"`   // СП, сумма

	IsSection bool `json:"isSection"`
	IsFooter  bool `json:"isFooter"`
	IsSubItem bool `json:"isSubItem"`

	ResourceKind ResourceKind `json:"resourceKind,omitempty"`
	ParentIndex  *int         `json:"parentIndex,omitempty"` // индекс родительской работы в потоке
	ParentWorkID int64        `json:"parentWorkId,omitempty"`

	CatalogEntryID  int64   `json:"catalogEntryId,omitempty"` // ссылка на каталог после резолва
	MatchTier       string  `json:"matchTier,omitempty"`
	MatchConfidence float64 `json:"matchConfidence,omitempty"`

	HasMathMismatch bool          `json:"hasMathMismatch"`
	Anomaly         *PriceAnomaly `json:"anomaly,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// HasAmounts сообщает, несёт ли строка количественные/ценовые значения
func (r *MappedRow) HasAmounts() bool {
	return positive(r.Quantity) || positive(r.UnitPrice)
}

// ClearAmounts обнуляет числовые поля (разделы и итоги их не несут)
func (r *MappedRow) ClearAmounts() {
	r.Quantity = nil
	r.UnitPrice = nil
	r.BasePrice = nil
	r.CurrentPrice = nil
	r.Total = nil
	r.Components = nil
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}
