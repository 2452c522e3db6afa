package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"smetaflow/internal/model"
)

// Entry запись каталога: нормативная расценка или ресурс
type Entry struct {
	ID     int64              `json:"id"`
	Code   string             `json:"code,omitempty"`
	Name   string             `json:"name"`
	Unit   string             `json:"unit,omitempty"`
	Kind   model.ResourceKind `json:"kind,omitempty"`
	Source string             `json:"source,omitempty"` // происхождение: catalog/import
}

// Catalog коллаборатор поиска/создания записей, ключ — организация
type Catalog interface {
	// FindByCode точный поиск по шифру; (nil, nil) если не найдено
	FindByCode(ctx context.Context, orgID int64, code string) (*Entry, error)
	// SearchByName кандидаты для нечёткого сопоставления
	SearchByName(ctx context.Context, orgID int64, name string, limit int) ([]Entry, error)
	// Create заводит новую запись; ошибка создания фатальна для резолва
	Create(ctx context.Context, orgID int64, e Entry) (*Entry, error)
}

// MatchTier ступень сопоставления по убыванию достоверности
type MatchTier string

const (
	TierExact   MatchTier = "exact"
	TierVariant MatchTier = "variant"
	TierFuzzy   MatchTier = "fuzzy"
	TierCreated MatchTier = "created"
)

// Match результат резолва с уверенностью
type Match struct {
	Entry      Entry     `json:"entry"`
	Tier       MatchTier `json:"tier"`
	Confidence float64   `json:"confidence"`
}

// Resolver разрешение шифров и наименований по ступеням:
// точный шифр, варианты написания, триграммное сходство имени
type Resolver struct {
	catalog      Catalog
	trigramFloor float64
	maxResults   int
}

// NewResolver floor — минимальное триграммное сходство, maxResults —
// предел кандидатов нечёткого поиска
func NewResolver(c Catalog, trigramFloor float64, maxResults int) *Resolver {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Resolver{catalog: c, trigramFloor: trigramFloor, maxResults: maxResults}
}

// Resolve ищет запись по шифру и/или имени; (nil, nil) если не найдено.
// Ошибки поиска у коллаборатора понижают ступень, а не прерывают резолв.
func (r *Resolver) Resolve(ctx context.Context, orgID int64, code, name string) (*Match, error) {
	if norm := NormalizeCode(code); norm != "" {
		if e, err := r.catalog.FindByCode(ctx, orgID, norm); err == nil && e != nil {
			return &Match{Entry: *e, Tier: TierExact, Confidence: 1.0}, nil
		}

		variants := CodeVariants(code)
		for i, v := range variants {
			if i == 0 {
				continue // исходная нормализация уже проверена
			}
			e, err := r.catalog.FindByCode(ctx, orgID, v)
			if err != nil || e == nil {
				continue
			}
			// уверенность убывает с каждым испробованным вариантом: 1.0 -> 0.85
			conf := 1.0 - 0.15*float64(i)/float64(len(variants)-1)
			return &Match{Entry: *e, Tier: TierVariant, Confidence: conf}, nil
		}
	}

	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	return r.resolveByName(ctx, orgID, name)
}

func (r *Resolver) resolveByName(ctx context.Context, orgID int64, name string) (*Match, error) {
	candidates, err := r.catalog.SearchByName(ctx, orgID, name, r.maxResults*5)
	if err != nil || len(candidates) == 0 {
		return nil, nil
	}

	type scored struct {
		entry Entry
		sim   float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, e := range candidates {
		sim := TrigramSimilarity(name, e.Name)
		if sim >= r.trigramFloor {
			ranked = append(ranked, scored{entry: e, sim: sim})
		}
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })
	if len(ranked) > r.maxResults {
		ranked = ranked[:r.maxResults]
	}

	best := ranked[0]
	return &Match{Entry: best.entry, Tier: TierFuzzy, Confidence: best.sim}, nil
}

// ResolveOrCreate как Resolve, но отсутствующий ресурс заводится в каталоге
// с категорией по префиксу шифра либо ключевым словам имени.
// Ошибка создания фатальна для резолва этого ресурса и возвращается вызывающему.
func (r *Resolver) ResolveOrCreate(ctx context.Context, orgID int64, code, name, unit string) (*Match, error) {
	m, err := r.Resolve(ctx, orgID, code, name)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}

	e := Entry{
		Code:   NormalizeCode(code),
		Name:   strings.TrimSpace(name),
		Unit:   unit,
		Kind:   InferKind(code, name),
		Source: "import",
	}
	created, err := r.catalog.Create(ctx, orgID, e)
	if err != nil {
		return nil, fmt.Errorf("create catalog entry %q: %w", e.Name, err)
	}
	return &Match{Entry: *created, Tier: TierCreated, Confidence: 1.0}, nil
}

// InferKind категория ресурса: сначала по префиксу шифра, затем по имени
func InferKind(code, name string) model.ResourceKind {
	norm := NormalizeCode(code)
	switch {
	case strings.HasPrefix(norm, "ФСЭМ"), strings.HasPrefix(norm, "ТСЭМ"), strings.HasPrefix(norm, "СЭМ"):
		return model.ResourceMachinery
	case strings.HasPrefix(norm, "ФССЦ"), strings.HasPrefix(norm, "ТССЦ"),
		strings.HasPrefix(norm, "ФСБЦ"), strings.HasPrefix(norm, "ССЦ"):
		return model.ResourceMaterial
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "затраты труда") || strings.Contains(lower, "оплата труда") ||
		strings.Contains(lower, "рабочи"):
		return model.ResourceLabor
	case strings.Contains(lower, "машин") || strings.Contains(lower, "механизм") ||
		strings.Contains(lower, "экскаватор") || strings.Contains(lower, "кран"):
		return model.ResourceMachinery
	}
	return model.ResourceMaterial
}
