package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"smetaflow/internal/cache"
	"smetaflow/internal/model"
)

const (
	mappingCacheNS  = "ai_mapping"
	mappingCacheTTL = 24 * time.Hour
	maxSampleRows   = 10
)

// фиксированная инструкция: ответ — один JSON-объект поле->индекс колонки
const mappingSystemPrompt = `Ты анализируешь таблицу строительной сметы.
По заголовкам колонок и примерам строк определи, какая колонка содержит какое поле.
Допустимые поля: position, normative_code, item_name, unit, quantity, unit_price, base_price, current_price, total, price_index, section.
Верни строго один JSON-объект вида {"поле": индекс_колонки}. Индексы колонок с нуля.
Любой текст вне JSON — ошибка.`

// MappingSuggester подсказка маппинга колонок через LLM-коллаборатора.
// Результат совещательный: эвристика заполняет решённые поля первой,
// подсказка закрывает пробелы.
type MappingSuggester struct {
	chat  Chatter
	cache cache.Cache
}

// NewMappingSuggester chat может быть nil — подсказки отключены
func NewMappingSuggester(chat Chatter, c cache.Cache) *MappingSuggester {
	return &MappingSuggester{chat: chat, cache: c}
}

// Suggest запрашивает соответствие поле->колонка по заголовкам и примерам
// строк. Результаты кэшируются на сутки по хэшу входа. Любой сбой —
// (nil, err); вызывающий логирует и продолжает без подсказки.
func (s *MappingSuggester) Suggest(ctx context.Context, headers map[int]string, samples [][]string) (map[string]int, error) {
	if s.chat == nil {
		return nil, nil
	}

	key := suggestCacheKey(headers, samples)
	if s.cache != nil {
		if v, ok := s.cache.Get(mappingCacheNS, key); ok {
			if m, ok := v.(map[string]int); ok {
				return m, nil
			}
		}
	}

	user := buildMappingRequest(headers, samples)
	reply, err := s.chat.Chat(ctx, []Message{
		{Role: "system", Content: mappingSystemPrompt},
		{Role: "user", Content: user},
	}, Options{Temperature: 0, MaxTokens: 500})
	if err != nil {
		return nil, fmt.Errorf("ai mapping: %w", err)
	}

	raw := ExtractFirstJSON(StripCodeFences(reply))
	if raw == "" {
		return nil, fmt.Errorf("ai mapping: no JSON object in reply")
	}

	var parsed map[string]int
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("ai mapping: bad JSON: %w", err)
	}

	result := make(map[string]int)
	for field, col := range parsed {
		if knownFields[field] && col >= 0 {
			result[field] = col
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("ai mapping: no known fields in reply")
	}

	if s.cache != nil {
		s.cache.Put(mappingCacheNS, key, result, mappingCacheTTL)
	}
	return result, nil
}

var knownFields = map[string]bool{
	model.FieldPosition:     true,
	model.FieldCode:         true,
	model.FieldName:         true,
	model.FieldUnit:         true,
	model.FieldQuantity:     true,
	model.FieldUnitPrice:    true,
	model.FieldBasePrice:    true,
	model.FieldCurrentPrice: true,
	model.FieldTotal:        true,
	model.FieldPriceIndex:   true,
	model.FieldSection:      true,
}

func buildMappingRequest(headers map[int]string, samples [][]string) string {
	var b strings.Builder

	b.WriteString("Заголовки колонок:\n")
	for _, col := range sortedCols(headers) {
		fmt.Fprintf(&b, "%d: %s\n", col-1, headers[col])
	}

	if len(samples) > 0 {
		b.WriteString("\nПримеры строк:\n")
		n := len(samples)
		if n > maxSampleRows {
			n = maxSampleRows
		}
		for i := 0; i < n; i++ {
			b.WriteString(strings.Join(samples[i], " | "))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func suggestCacheKey(headers map[int]string, samples [][]string) string {
	var b strings.Builder
	for _, col := range sortedCols(headers) {
		fmt.Fprintf(&b, "%d=%s;", col, headers[col])
	}
	for _, row := range samples {
		b.WriteString(strings.Join(row, ";"))
		b.WriteString("\n")
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func sortedCols(headers map[int]string) []int {
	cols := make([]int, 0, len(headers))
	for col := range headers {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	return cols
}
