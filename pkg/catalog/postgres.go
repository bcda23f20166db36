package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bastiangx/addrserve/internal/utils"
	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/lib/pq"
)

// DefaultTable is the region table read when none is configured.
const DefaultTable = "regions"

// OpenPostgres opens a pooled connection to dsn and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// PostgresSource reads regions from a table shaped like
//
//	id bigint, parent_id bigint, type text, name text, alias text
//
// where alias holds the same separated list as the TSV format and may be null.
type PostgresSource struct {
	DB    *sql.DB
	Table string
}

func (s *PostgresSource) query() string {
	table := s.Table
	if table == "" {
		table = DefaultTable
	}
	return "SELECT id, parent_id, type, name, alias FROM " + pq.QuoteIdentifier(table) + " ORDER BY id"
}

func (s *PostgresSource) Load(ctx context.Context) ([]region.Record, error) {
	if s.DB == nil {
		return nil, ErrNoSource
	}
	rows, err := s.DB.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	var records []region.Record
	for rows.Next() {
		var (
			rec   region.Record
			typ   string
			alias sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.ParentID, &typ, &rec.Name, &alias); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		if rec.Type, err = region.ParseType(typ); err != nil {
			return nil, fmt.Errorf("region %d: %w", rec.ID, err)
		}
		if alias.Valid {
			rec.Alias = utils.SplitAliases(alias.String)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	return records, nil
}
