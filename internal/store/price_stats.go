package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"smetaflow/internal/quality"
)

// UnitPriceStats историческая статистика цен организации по единице
// измерения; нулевая выборка означает отсутствие данных
func (s *Store) UnitPriceStats(orgID int64, unit string) (quality.PriceStats, error) {
	row := s.db.QueryRow(`
		SELECT mean, std_dev, samples FROM price_stats
		WHERE organization_id = ? AND unit = ?`, orgID, unit)

	var st quality.PriceStats
	err := row.Scan(&st.Mean, &st.StdDev, &st.Samples)
	if err == sql.ErrNoRows {
		return quality.PriceStats{}, nil
	}
	if err != nil {
		return quality.PriceStats{}, fmt.Errorf("unit price stats: %w", err)
	}
	return st, nil
}

// RecordUnitPrices вливает цены завершённого импорта в накопленную
// статистику: среднее и дисперсия объединяются по выборкам
func (s *Store) RecordUnitPrices(orgID int64, unit string, prices []float64) error {
	if len(prices) == 0 {
		return nil
	}

	existing, err := s.UnitPriceStats(orgID, unit)
	if err != nil {
		return err
	}

	batchMean, batchVar := meanVariance(prices)
	merged := mergeStats(existing, batchMean, batchVar, len(prices))

	_, err = s.db.Exec(`
		INSERT INTO price_stats (organization_id, unit, mean, std_dev, samples, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(organization_id, unit) DO UPDATE SET
			mean = excluded.mean,
			std_dev = excluded.std_dev,
			samples = excluded.samples,
			updated_at = excluded.updated_at`,
		orgID, unit, merged.Mean, merged.StdDev, merged.Samples, time.Now())
	if err != nil {
		return fmt.Errorf("record unit prices: %w", err)
	}
	return nil
}

func meanVariance(values []float64) (mean, variance float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, variance
}

// mergeStats объединение двух выборок по моментам
func mergeStats(existing quality.PriceStats, batchMean, batchVar float64, batchN int) quality.PriceStats {
	if existing.Samples == 0 {
		return quality.PriceStats{
			Mean:    batchMean,
			StdDev:  math.Sqrt(batchVar),
			Samples: batchN,
		}
	}

	n1 := float64(existing.Samples)
	n2 := float64(batchN)
	total := n1 + n2

	mean := (existing.Mean*n1 + batchMean*n2) / total
	d1 := existing.Mean - mean
	d2 := batchMean - mean
	variance := (n1*(existing.StdDev*existing.StdDev+d1*d1) + n2*(batchVar+d2*d2)) / total

	return quality.PriceStats{
		Mean:    mean,
		StdDev:  math.Sqrt(variance),
		Samples: existing.Samples + batchN,
	}
}
