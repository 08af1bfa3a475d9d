// Package store reads entity tables from the relational source of truth.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/schema"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// LoadTable reads a whole entity table into memory. Only registered table
// names are accepted, which also keeps caller input out of the SQL text.
func (s *Store) LoadTable(ctx context.Context, name string) (dataset.Table, error) {
	if !schema.Known(name) {
		return dataset.Table{}, fmt.Errorf("unknown table %q", name)
	}

	query := "SELECT * FROM " + pgx.Identifier{name}.Sanitize()
	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return dataset.Table{}, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := dataset.Table{Cols: make([]string, len(fields))}
	for i, f := range fields {
		t.Cols[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return dataset.Table{}, err
		}
		row := make(dataset.Row, len(values))
		for i, v := range values {
			row[t.Cols[i]] = cellValue(v)
		}
		t.Append(row)
	}
	if err := rows.Err(); err != nil {
		return dataset.Table{}, err
	}
	return t, nil
}

// cellValue narrows driver types to the dataset's cell vocabulary; exact
// typing is finished by dataset.Normalize against the schema registry.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int64, float64, string, bool, time.Time:
		return x
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
