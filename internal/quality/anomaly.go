package quality

import (
	"fmt"
	"math"
	"time"

	"smetaflow/internal/cache"
	"smetaflow/internal/model"
)

// PriceStats статистика цены за единицу по единице измерения
type PriceStats struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"`
	Samples int     `json:"samples"`
}

// StatsProvider источник исторической статистики цен организации
type StatsProvider interface {
	UnitPriceStats(orgID int64, unit string) (PriceStats, error)
}

// AnomalyDetector статистическая проверка цен: z-оценка относительно
// исторических данных организации либо, при их отсутствии, самого батча
type AnomalyDetector struct {
	provider   StatsProvider
	cache      cache.Cache
	zThreshold float64
	minSamples int
	statsTTL   time.Duration
}

// NewAnomalyDetector provider может быть nil — тогда статистика
// считается только по импортируемым строкам
func NewAnomalyDetector(provider StatsProvider, c cache.Cache, zThreshold float64, minSamples int) *AnomalyDetector {
	return &AnomalyDetector{
		provider:   provider,
		cache:      c,
		zThreshold: zThreshold,
		minSamples: minSamples,
		statsTTL:   time.Hour,
	}
}

// Annotate помечает строки с аномальной ценой. Аномалия требует
// положительного стандартного отклонения: одинаковые цены не аномальны.
func (d *AnomalyDetector) Annotate(orgID int64, rows []*model.MappedRow) {
	byUnit := make(map[string][]*model.MappedRow)
	for _, r := range rows {
		if r.IsSection || r.IsFooter || r.UnitPrice == nil || r.Unit == "" {
			continue
		}
		byUnit[r.Unit] = append(byUnit[r.Unit], r)
	}

	for unit, group := range byUnit {
		stats, ok := d.historicalStats(orgID, unit)
		if !ok {
			stats, ok = inBatchStats(group, d.minSamples)
		}
		if !ok || stats.StdDev <= 0 {
			continue
		}

		for _, r := range group {
			z := math.Abs(*r.UnitPrice-stats.Mean) / stats.StdDev
			if z < d.zThreshold {
				continue
			}
			direction := "high"
			if *r.UnitPrice < stats.Mean {
				direction = "low"
			}
			r.Anomaly = &model.PriceAnomaly{
				Direction: direction,
				ZScore:    z,
				Mean:      stats.Mean,
			}
		}
	}
}

func (d *AnomalyDetector) historicalStats(orgID int64, unit string) (PriceStats, bool) {
	ns := fmt.Sprintf("price_stats:%d", orgID)

	if d.cache != nil {
		if v, ok := d.cache.Get(ns, unit); ok {
			if st, ok := v.(PriceStats); ok && st.Samples >= d.minSamples {
				return st, true
			}
		}
	}

	if d.provider == nil {
		return PriceStats{}, false
	}
	st, err := d.provider.UnitPriceStats(orgID, unit)
	if err != nil || st.Samples < d.minSamples {
		// сбой коллаборатора: статистика недоступна, не ошибка сессии
		return PriceStats{}, false
	}
	if d.cache != nil {
		d.cache.Put(ns, unit, st, d.statsTTL)
	}
	return st, true
}

// inBatchStats среднее и отклонение по строкам батча
func inBatchStats(group []*model.MappedRow, minSamples int) (PriceStats, bool) {
	if len(group) < minSamples {
		return PriceStats{}, false
	}

	sum := 0.0
	for _, r := range group {
		sum += *r.UnitPrice
	}
	mean := sum / float64(len(group))

	variance := 0.0
	for _, r := range group {
		variance += (*r.UnitPrice - mean) * (*r.UnitPrice - mean)
	}
	variance /= float64(len(group))

	return PriceStats{
		Mean:    mean,
		StdDev:  math.Sqrt(variance),
		Samples: len(group),
	}, true
}
