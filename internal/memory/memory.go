package memory

import (
	"fmt"
	"time"

	"smetaflow/internal/model"
)

// Store хранилище подтверждённых маппингов
type Store interface {
	// FindBySignature (nil, nil) при отсутствии записи
	FindBySignature(orgID int64, fileFormat, signature string) (*model.MemoryRecord, error)
	Insert(rec *model.MemoryRecord) error
	Update(rec *model.MemoryRecord) error
}

// Memory память маппингов: оборачивает детекцию колонок, перехватывая
// знакомые раскладки до эвристик и запоминая подтверждённые после
type Memory struct {
	store             Store
	confidenceDivisor int // success_count/divisor, не выше 1
	feedbackPenalty   int
}

// New память с порогами по умолчанию
func New(store Store) *Memory {
	return &Memory{store: store, confidenceDivisor: 5, feedbackPenalty: 2}
}

// Lookup ищет сохранённый маппинг по сигнатуре заголовков.
// Попадание увеличивает счётчик использований; уверенность растёт
// с числом подтверждений: min(1, success/divisor).
func (m *Memory) Lookup(orgID int64, fileFormat string, headers []string) (*model.MemoryRecord, error) {
	sig := Signature(headers)
	rec, err := m.store.FindBySignature(orgID, fileFormat, sig)
	if err != nil {
		return nil, fmt.Errorf("memory lookup: %w", err)
	}
	if rec == nil || rec.SuccessCount == 0 {
		return nil, nil
	}

	rec.UsageCount++
	rec.LastUsedAt = time.Now()
	if err := m.store.Update(rec); err != nil {
		// счётчик не критичен, маппинг всё равно пригоден
		return rec, nil
	}

	conf := float64(rec.SuccessCount) / float64(m.confidenceDivisor)
	if conf > 1 {
		conf = 1
	}
	rec.Mapping.Confidence = conf
	rec.Mapping.Source = model.MappingFromMemory
	return rec, nil
}

// Remember сохраняет подтверждённый маппинг: первая фиксация создаёт
// запись, повторная увеличивает счётчики успеха и использования
func (m *Memory) Remember(orgID int64, fileFormat string, headers []string, mapping model.ColumnMapping, sectionHints, footerHints []string) error {
	sig := Signature(headers)
	rec, err := m.store.FindBySignature(orgID, fileFormat, sig)
	if err != nil {
		return fmt.Errorf("memory remember: %w", err)
	}

	now := time.Now()
	if rec == nil {
		rec = &model.MemoryRecord{
			OrganizationID: orgID,
			FileFormat:     fileFormat,
			Signature:      sig,
			Mapping:        mapping,
			SectionHints:   sectionHints,
			FooterHints:    footerHints,
			SuccessCount:   1,
			UsageCount:     1,
			LastUsedAt:     now,
			CreatedAt:      now,
		}
		return m.store.Insert(rec)
	}

	rec.SuccessCount++
	rec.UsageCount++
	rec.LastUsedAt = now
	rec.Mapping = mapping
	if len(sectionHints) > 0 {
		rec.SectionHints = sectionHints
	}
	if len(footerHints) > 0 {
		rec.FooterHints = footerHints
	}
	return m.store.Update(rec)
}

// Feedback отрицательный отзыв уменьшает счётчик успеха на штраф
// (не ниже нуля): повторные отклонения вытесняют маппинг.
// Записи никогда не удаляются автоматически.
func (m *Memory) Feedback(orgID int64, fileFormat string, headers []string, ok bool) error {
	if ok {
		return nil
	}

	sig := Signature(headers)
	rec, err := m.store.FindBySignature(orgID, fileFormat, sig)
	if err != nil || rec == nil {
		return err
	}

	rec.SuccessCount -= m.feedbackPenalty
	if rec.SuccessCount < 0 {
		rec.SuccessCount = 0
	}
	return m.store.Update(rec)
}
