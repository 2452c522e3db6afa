package parser

import (
	"regexp"
	"strings"

	"smetaflow/internal/model"
)

// уверенность совпадения заголовка с ключевым словом
const (
	matchExact        = 1.0
	matchWordFloor    = 0.6
	matchWordCeil     = 0.95
	matchSubstring    = 0.5
)

type fieldScore struct {
	field string
	score float64
}

// MapColumns эвристический маппинг колонок на канонические поля.
// Каждый заголовок оценивается по словарям; колонке назначается поле
// с максимальным баллом, поле используется не более одного раза,
// балл ниже порога отбрасывается.
func MapColumns(headers map[int]string, cutoff float64) model.ColumnMapping {
	type colScore struct {
		col   int
		field string
		score float64
	}

	var candidates []colScore
	for col, text := range headers {
		best := bestFieldFor(text)
		if best.field == "" || best.score < cutoff {
			continue
		}
		candidates = append(candidates, colScore{col: col, field: best.field, score: best.score})
	}

	// более уверенные назначения разбираются первыми
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].score > candidates[i].score ||
				(candidates[j].score == candidates[i].score && candidates[j].col < candidates[i].col) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}

	mapping := model.ColumnMapping{
		Columns: make(map[string]int),
		Source:  model.MappingFromHeuristic,
	}
	usedField := make(map[string]bool)

	sum, n := 0.0, 0
	for _, c := range candidates {
		if usedField[c.field] {
			continue
		}
		usedField[c.field] = true
		mapping.Columns[c.field] = c.col
		sum += c.score
		n++
	}
	if n > 0 {
		mapping.Confidence = sum / float64(n)
	}

	// имя и единица могут делить одну ячейку: если единица не найдена,
	// а заголовок имени упоминает её, поле единицы указывает на ту же колонку
	if nameCol, ok := mapping.Columns[model.FieldName]; ok {
		if _, hasUnit := mapping.Columns[model.FieldUnit]; !hasUnit {
			norm := NormalizeHeader(headers[nameCol])
			if strings.Contains(norm, "ед") && strings.Contains(norm, "изм") {
				mapping.Columns[model.FieldUnit] = nameCol
			}
		}
	}

	return mapping
}

// bestFieldFor лучшее поле для текста заголовка
func bestFieldFor(header string) fieldScore {
	norm := NormalizeHeader(header)
	if norm == "" {
		return fieldScore{}
	}

	best := fieldScore{}
	for _, field := range fieldOrder {
		for _, kw := range fieldKeywords[field] {
			s := matchScore(norm, kw)
			if s > best.score {
				best = fieldScore{field: field, score: s}
			}
		}
	}
	return best
}

// matchScore уверенность совпадения: точное равенство 1.0,
// совпадение по границам слова 0.6-0.95 (пропорционально доле
// ключевого слова в заголовке), вхождение подстрокой 0.5
func matchScore(header, keyword string) float64 {
	if header == keyword {
		return matchExact
	}
	if !strings.Contains(header, keyword) {
		return 0
	}
	if wholeWordMatch(header, keyword) {
		ratio := float64(len(keyword)) / float64(len(header))
		s := matchWordFloor + (matchWordCeil-matchWordFloor)*ratio
		if s > matchWordCeil {
			return matchWordCeil
		}
		return s
	}
	return matchSubstring
}

var wordBoundaryRe = regexp.MustCompile(`[а-яa-z0-9№-]+`)

// wholeWordMatch ключевое слово входит в заголовок последовательностью целых слов
func wholeWordMatch(header, keyword string) bool {
	hw := wordBoundaryRe.FindAllString(header, -1)
	kws := wordBoundaryRe.FindAllString(keyword, -1)
	if len(kws) == 0 {
		return false
	}
	for i := 0; i+len(kws) <= len(hw); i++ {
		ok := true
		for j := range kws {
			if hw[i+j] != kws[j] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
