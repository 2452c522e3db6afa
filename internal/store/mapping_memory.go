package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"smetaflow/internal/model"
)

// FindBySignature ищет запись памяти; (nil, nil) при отсутствии
func (s *Store) FindBySignature(orgID int64, fileFormat, signature string) (*model.MemoryRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, organization_id, file_format, signature, mapping_json,
		       section_hints, footer_hints, success_count, usage_count,
		       last_used_at, created_at
		FROM mapping_memory
		WHERE organization_id = ? AND file_format = ? AND signature = ?`,
		orgID, fileFormat, signature)

	var rec model.MemoryRecord
	var mappingJSON, sectionHints, footerHints string
	var lastUsed sql.NullTime

	err := row.Scan(&rec.ID, &rec.OrganizationID, &rec.FileFormat, &rec.Signature,
		&mappingJSON, &sectionHints, &footerHints,
		&rec.SuccessCount, &rec.UsageCount, &lastUsed, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find mapping memory: %w", err)
	}

	if err := json.Unmarshal([]byte(mappingJSON), &rec.Mapping); err != nil {
		return nil, fmt.Errorf("decode stored mapping: %w", err)
	}
	rec.SectionHints = splitHints(sectionHints)
	rec.FooterHints = splitHints(footerHints)
	if lastUsed.Valid {
		rec.LastUsedAt = lastUsed.Time
	}
	return &rec, nil
}

// Insert создаёт запись памяти
func (s *Store) Insert(rec *model.MemoryRecord) error {
	mappingJSON, err := json.Marshal(rec.Mapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO mapping_memory
			(organization_id, file_format, signature, mapping_json,
			 section_hints, footer_hints, success_count, usage_count,
			 last_used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.OrganizationID, rec.FileFormat, rec.Signature, string(mappingJSON),
		joinHints(rec.SectionHints), joinHints(rec.FooterHints),
		rec.SuccessCount, rec.UsageCount, rec.LastUsedAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert mapping memory: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// Update обновляет счётчики и маппинг существующей записи
func (s *Store) Update(rec *model.MemoryRecord) error {
	mappingJSON, err := json.Marshal(rec.Mapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE mapping_memory
		SET mapping_json = ?, section_hints = ?, footer_hints = ?,
		    success_count = ?, usage_count = ?, last_used_at = ?
		WHERE id = ?`,
		string(mappingJSON), joinHints(rec.SectionHints), joinHints(rec.FooterHints),
		rec.SuccessCount, rec.UsageCount, rec.LastUsedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("update mapping memory: %w", err)
	}
	return nil
}

// LogSession фиксирует итог сессии в журнале
func (s *Store) LogSession(id string, orgID int64, filename, status string, total, imported, skipped int) error {
	_, err := s.db.Exec(`
		INSERT INTO import_log
			(id, organization_id, filename, status, rows_total, rows_imported, rows_skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			rows_total = excluded.rows_total,
			rows_imported = excluded.rows_imported,
			rows_skipped = excluded.rows_skipped`,
		id, orgID, filename, status, total, imported, skipped, time.Now())
	if err != nil {
		return fmt.Errorf("log session: %w", err)
	}
	return nil
}

func joinHints(hints []string) string {
	return strings.Join(hints, "\n")
}

func splitHints(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
