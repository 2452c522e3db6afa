package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"smetaflow/internal/catalog"
	"smetaflow/internal/model"
)

// FindByCode точный поиск записи каталога по шифру; (nil, nil) при отсутствии
func (s *Store) FindByCode(ctx context.Context, orgID int64, code string) (*catalog.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, unit, kind, source FROM catalog_entries
		WHERE organization_id = ? AND code = ?
		LIMIT 1`, orgID, code)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find catalog entry: %w", err)
	}
	return e, nil
}

// SearchByName кандидаты для нечёткого сопоставления. SQLite не умеет
// триграммный поиск, поэтому предварительный отбор по словам через LIKE,
// ранжирование остаётся за резолвером.
func (s *Store) SearchByName(ctx context.Context, orgID int64, name string, limit int) ([]catalog.Entry, error) {
	words := strings.Fields(strings.ToLower(name))
	if len(words) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(words))
	args := []any{orgID}
	for _, w := range words {
		conds = append(conds, "LOWER(name) LIKE ?")
		args = append(args, "%"+w+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, code, name, unit, kind, source FROM catalog_entries
		WHERE organization_id = ? AND (%s)
		LIMIT ?`, strings.Join(conds, " OR "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search catalog entries: %w", err)
	}
	defer rows.Close()

	var out []catalog.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Create заводит новую запись каталога
func (s *Store) Create(ctx context.Context, orgID int64, e catalog.Entry) (*catalog.Entry, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (organization_id, code, name, unit, kind, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		orgID, e.Code, e.Name, e.Unit, string(e.Kind), e.Source, time.Now())
	if err != nil {
		return nil, fmt.Errorf("create catalog entry: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return &e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*catalog.Entry, error) {
	var e catalog.Entry
	var kind string
	if err := r.Scan(&e.ID, &e.Code, &e.Name, &e.Unit, &kind, &e.Source); err != nil {
		return nil, err
	}
	e.Kind = model.ResourceKind(kind)
	return &e, nil
}
