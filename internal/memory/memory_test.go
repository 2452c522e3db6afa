package memory_test

import (
	"errors"
	"fmt"
	"testing"

	"smetaflow/internal/memory"
	"smetaflow/internal/model"
)

// fakeStore память маппингов в карте
type fakeStore struct {
	records map[string]*model.MemoryRecord
	nextID  int64
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*model.MemoryRecord)}
}

func (s *fakeStore) key(orgID int64, format, sig string) string {
	return fmt.Sprintf("%d|%s|%s", orgID, format, sig)
}

func (s *fakeStore) FindBySignature(orgID int64, format, sig string) (*model.MemoryRecord, error) {
	if s.failing {
		return nil, errors.New("store down")
	}
	rec, ok := s.records[s.key(orgID, format, sig)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) Insert(rec *model.MemoryRecord) error {
	if s.failing {
		return errors.New("store down")
	}
	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.records[s.key(rec.OrganizationID, rec.FileFormat, rec.Signature)] = &cp
	return nil
}

func (s *fakeStore) Update(rec *model.MemoryRecord) error {
	if s.failing {
		return errors.New("store down")
	}
	for k, v := range s.records {
		if v.ID == rec.ID {
			cp := *rec
			s.records[k] = &cp
			return nil
		}
	}
	return errors.New("record not found")
}

var testHeaders = []string{"№", "Наименование", "Ед.", "Кол-во", "Цена"}

func testMapping() model.ColumnMapping {
	return model.ColumnMapping{
		Columns:    map[string]int{model.FieldName: 2, model.FieldQuantity: 4, model.FieldUnitPrice: 5},
		Confidence: 0.9,
		Source:     model.MappingFromHeuristic,
	}
}

func TestSignaturePermutationInvariant(t *testing.T) {
	a := memory.Signature([]string{"Код", "Наименование"})
	b := memory.Signature([]string{"наименование", "код"})
	if a != b {
		t.Fatalf("Signature зависит от порядка: %s != %s", a, b)
	}

	c := memory.Signature([]string{"Код", "Цена"})
	if a == c {
		t.Fatalf("разные заголовки дали одну сигнатуру")
	}
}

func TestSignatureNormalization(t *testing.T) {
	a := memory.Signature([]string{"Ед. Изм."})
	b := memory.Signature([]string{"ед  изм"})
	if a != b {
		t.Fatalf("нормализация токенов не совпала: %s != %s", a, b)
	}
}

func TestLookupMiss(t *testing.T) {
	m := memory.New(newFakeStore())
	rec, err := m.Lookup(1, "xlsx", testHeaders)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec != nil {
		t.Fatalf("Lookup вернул запись для незнакомой сигнатуры: %+v", rec)
	}
}

func TestRememberThenLookup(t *testing.T) {
	fs := newFakeStore()
	m := memory.New(fs)

	if err := m.Remember(1, "xlsx", testHeaders, testMapping(), []string{"глава"}, nil); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	rec, err := m.Lookup(1, "xlsx", testHeaders)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec == nil {
		t.Fatalf("Lookup не нашёл сохранённый маппинг")
	}
	if rec.Mapping.Source != model.MappingFromMemory {
		t.Fatalf("Source=%s, want memory", rec.Mapping.Source)
	}
	if rec.Mapping.Confidence != 0.2 {
		t.Fatalf("Confidence=%v, want 0.2 (1 подтверждение из 5)", rec.Mapping.Confidence)
	}
	if len(rec.SectionHints) != 1 || rec.SectionHints[0] != "глава" {
		t.Fatalf("SectionHints=%v", rec.SectionHints)
	}
}

func TestRememberIncrementsCounters(t *testing.T) {
	fs := newFakeStore()
	m := memory.New(fs)

	for i := 0; i < 5; i++ {
		if err := m.Remember(1, "xlsx", testHeaders, testMapping(), nil, nil); err != nil {
			t.Fatalf("Remember #%d: %v", i, err)
		}
	}

	rec, err := m.Lookup(1, "xlsx", testHeaders)
	if err != nil || rec == nil {
		t.Fatalf("Lookup: rec=%v err=%v", rec, err)
	}
	if rec.SuccessCount != 5 {
		t.Fatalf("SuccessCount=%d, want 5", rec.SuccessCount)
	}
	if rec.Mapping.Confidence != 1.0 {
		t.Fatalf("Confidence=%v, want 1.0 (насыщение)", rec.Mapping.Confidence)
	}
}

// отрицательный отзыв вытесняет маппинг, но запись не удаляется
func TestFeedbackPenalty(t *testing.T) {
	fs := newFakeStore()
	m := memory.New(fs)

	if err := m.Remember(1, "xlsx", testHeaders, testMapping(), nil, nil); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := m.Feedback(1, "xlsx", testHeaders, false); err != nil {
		t.Fatalf("Feedback: %v", err)
	}

	rec, err := m.Lookup(1, "xlsx", testHeaders)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec != nil {
		t.Fatalf("вытесненный маппинг всё ещё выдаётся: %+v", rec)
	}
	if len(fs.records) != 1 {
		t.Fatalf("запись удалена, want сохранена с нулевым счётчиком")
	}
}

func TestFeedbackPositiveNoop(t *testing.T) {
	fs := newFakeStore()
	m := memory.New(fs)

	if err := m.Remember(1, "xlsx", testHeaders, testMapping(), nil, nil); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if err := m.Feedback(1, "xlsx", testHeaders, true); err != nil {
		t.Fatalf("Feedback(ok): %v", err)
	}

	rec, _ := m.Lookup(1, "xlsx", testHeaders)
	if rec == nil || rec.SuccessCount != 1 {
		t.Fatalf("положительный отзыв изменил счётчики: %+v", rec)
	}
}

func TestLookupStoreError(t *testing.T) {
	fs := newFakeStore()
	fs.failing = true
	m := memory.New(fs)

	if _, err := m.Lookup(1, "xlsx", testHeaders); err == nil {
		t.Fatalf("Lookup не вернул ошибку хранилища")
	}
}
