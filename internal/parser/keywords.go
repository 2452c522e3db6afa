package parser

import "smetaflow/internal/model"

// fieldKeywords словари ключевых слов по каноническим полям.
// Порядок полей фиксирован: при равных баллах выигрывает более раннее поле.
var fieldOrder = []string{
	model.FieldPosition,
	model.FieldCode,
	model.FieldName,
	model.FieldUnit,
	model.FieldQuantity,
	model.FieldUnitPrice,
	model.FieldBasePrice,
	model.FieldCurrentPrice,
	model.FieldTotal,
	model.FieldPriceIndex,
	model.FieldSection,
}

var fieldKeywords = map[string][]string{
	model.FieldPosition: {
		"№", "№ п/п", "№ пп", "№п/п", "номер по порядку", "поз.", "позиция",
	},
	model.FieldCode: {
		"шифр", "шифр расценки", "код расценки", "обоснование", "код норматива",
		"шифр норматива", "код ресурса",
	},
	model.FieldName: {
		"наименование", "наименование работ", "наименование работ и затрат",
		"работы и затраты", "наименование затрат", "вид работ",
	},
	model.FieldUnit: {
		"ед. изм.", "ед.изм", "ед изм", "единица измерения", "измеритель", "ед.",
	},
	model.FieldQuantity: {
		"кол-во", "количество", "кол.", "объем", "объём",
	},
	model.FieldUnitPrice: {
		"цена", "цена за единицу", "стоимость единицы", "расценка",
		"цена в текущих ценах", "текущая цена",
	},
	model.FieldBasePrice: {
		"базисная цена", "в базисных ценах", "базисная стоимость", "базис",
		"стоимость в базисном уровне",
	},
	model.FieldCurrentPrice: {
		"текущая стоимость", "в текущих ценах", "стоимость в текущем уровне",
	},
	model.FieldTotal: {
		"всего", "итого", "общая стоимость", "сумма", "стоимость всего",
	},
	model.FieldPriceIndex: {
		"индекс", "индекс пересчета", "индекс смр", "коэффициент пересчета",
	},
	model.FieldSection: {
		"раздел",
	},
}

// footerKeywords признаки итоговых/подписных строк
var footerKeywords = []string{
	"итого", "всего по", "всего:", "справочно",
	"итог по разделу", "сметная стоимость", "составил", "проверил",
	"подпись", "____",
}

// sectionKeywords признаки строк-разделов
var sectionKeywords = []string{
	"раздел", "подраздел", "этап", "глава", "локальная смета", "объектная смета",
}

// trashLinePrefixes служебные строки, вклеившиеся в многострочное наименование
var trashLinePrefixes = []string{
	"индекс", "смр=", "нр ", "нр=", "нр(", "сп ", "сп=", "сп(",
	"фот", "накладные расходы", "сметная прибыль",
}

// subItemPrefixes ключевые слова ресурсных подпозиций в начале наименования
var subItemPrefixes = []string{
	"материал", "механизм", "машины и механизмы", "от:", "зп:",
	"затраты труда", "оплата труда", "эксплуатация машин",
}

// standardUnits известные единицы измерения в нормализованном виде
var standardUnits = map[string]string{
	"м":      "м",
	"м2":     "м2",
	"м²":     "м2",
	"кв.м":   "м2",
	"кв. м":  "м2",
	"м3":     "м3",
	"м³":     "м3",
	"куб.м":  "м3",
	"куб. м": "м3",
	"шт":     "шт",
	"шт.":    "шт",
	"т":      "т",
	"тн":     "т",
	"кг":     "кг",
	"км":     "км",
	"п.м":    "м.п.",
	"п.м.":   "м.п.",
	"м.п.":   "м.п.",
	"мп":     "м.п.",
	"компл":  "компл",
	"компл.": "компл",
	"к-т":    "компл",
	"л":      "л",
	"га":     "га",
	"маш-ч":  "маш-ч",
	"маш.-ч": "маш-ч",
	"чел-ч":  "чел-ч",
	"чел.-ч": "чел-ч",
	"100 м2": "100 м2",
	"100 м3": "100 м3",
	"1000 м3": "1000 м3",
}

// genericUnits значения поля единицы, считающиеся незаполненными:
// при таких значениях единицу стоит поискать в наименовании
var genericUnits = map[string]bool{
	"ед":  true,
	"ед.": true,
	"шт":  true,
	"шт.": true,
}

// NormalizeUnit приводит единицу измерения к словарному виду
func NormalizeUnit(s string) string {
	key := NormalizeHeader(s)
	if key == "" {
		return ""
	}
	if norm, ok := standardUnits[key]; ok {
		return norm
	}
	return key
}

// IsKnownUnit проверяет единицу по словарю
func IsKnownUnit(s string) bool {
	_, ok := standardUnits[NormalizeHeader(s)]
	return ok
}
