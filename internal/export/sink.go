package export

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/datmerge/internal/db"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

// Column names of the target table.
const (
	ColumnKey   = datmerge.HeaderKey
	ColumnTotal = datmerge.HeaderTotal
)

// PostgresSink replaces the rows of one table with a RecordSet.
type PostgresSink struct {
	connector *db.Connector
	connStr   string
	table     string
	logger    datmerge.Logger
}

// NewPostgresSink creates a sink writing to table through connStr.
// Panics if connector or logger is nil.
func NewPostgresSink(connector *db.Connector, connStr, table string, logger datmerge.Logger) *PostgresSink {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PostgresSink{connector: connector, connStr: connStr, table: table, logger: logger}
}

// Export replaces the table content with set.
// Any failure is returned as a *datmerge.ExportError and leaves the table unchanged.
func (s *PostgresSink) Export(ctx context.Context, set datmerge.RecordSet) error {
	if !datmerge.ValidTableName(s.table) {
		return &datmerge.ExportError{Table: s.table, Err: fmt.Errorf("invalid table name")}
	}

	s.logger.Verbose("Connecting to %s", db.RedactURL(s.connStr))
	pool, err := s.connector.Connect(ctx, s.connStr)
	if err != nil {
		return &datmerge.ExportError{Table: s.table, Err: err}
	}
	defer pool.Close()

	var copied int64
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range replaceStatements(s.table) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to prepare table: %w", err)
			}
		}

		copied, err = tx.CopyFrom(ctx, pgx.Identifier{s.table}, []string{ColumnKey, ColumnTotal}, rows(set))
		if err != nil {
			return fmt.Errorf("failed to copy rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return &datmerge.ExportError{Table: s.table, Err: err}
	}

	s.logger.Verbose("Exported %d rows to %s", copied, s.table)
	return nil
}

// replaceStatements returns the statements run before the copy.
// table must already be validated.
func replaceStatements(table string) []string {
	ident := pgx.Identifier{table}.Sanitize()
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s text PRIMARY KEY, %s double precision NOT NULL)",
			ident, ColumnKey, ColumnTotal),
		fmt.Sprintf("DELETE FROM %s", ident),
	}
}

func rows(set datmerge.RecordSet) pgx.CopyFromSource {
	return pgx.CopyFromSlice(set.Len(), func(i int) ([]any, error) {
		e := set.Entries[i]
		return []any{e.Key, e.Total}, nil
	})
}

// Verify PostgresSink implements the interface at compile time
var _ datmerge.Exporter = (*PostgresSink)(nil)
