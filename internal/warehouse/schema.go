package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/plotline-io/plotline/internal/model"
	"github.com/plotline-io/plotline/internal/sqlgen"
)

// numericTypes and timeTypes mirror the information_schema type names the
// warehouse reports for binnable columns. Everything else is categorical.
var (
	numericTypes = map[string]bool{
		"smallint":         true,
		"integer":          true,
		"int":              true,
		"bigint":           true,
		"real":             true,
		"float":            true,
		"double precision": true,
		"numeric":          true,
		"decimal":          true,
	}
	timeTypes = map[string]bool{
		"date":                        true,
		"timestamp":                   true,
		"timestamp without time zone": true,
		"timestamp with time zone":    true,
	}
)

// classifyKind maps a raw information_schema data type to a ColumnKind.
func classifyKind(dataType string) model.ColumnKind {
	t := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case numericTypes[t]:
		return model.KindNumeric
	case timeTypes[t]:
		return model.KindTime
	default:
		return model.KindCategory
	}
}

// Columns returns the columns of a table in ordinal order, classified by
// how they can be summarized.
func (s *Store) Columns(ctx context.Context, table model.TableRef) ([]model.Column, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	schema := table.Schema
	if schema == "" {
		schema = "public"
	}

	rows, err := s.pool.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table.Table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var c model.Column
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, err
		}
		c.Kind = classifyKind(c.DataType)
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}
	return cols, nil
}

// ColumnKind returns the kind of a single column.
func (s *Store) ColumnKind(ctx context.Context, table model.TableRef, column string) (model.ColumnKind, error) {
	cols, err := s.Columns(ctx, table)
	if err != nil {
		return 0, err
	}
	for _, c := range cols {
		if c.Name == column {
			return c.Kind, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in %s", column, table)
}

// TableRowCount returns the total number of rows in a table.
func (s *Store) TableRowCount(ctx context.Context, table model.TableRef) (int64, error) {
	tbl, err := sqlgen.QuoteTable(table)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var count int64
	err = s.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", tbl)).Scan(&count)
	return count, err
}

// ListTables returns the base tables in a schema ("public" when empty).
func (s *Store) ListTables(ctx context.Context, schema string) ([]model.TableRef, error) {
	if schema == "" {
		schema = "public"
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []model.TableRef
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, model.TableRef{Schema: schema, Table: name})
	}
	return tables, rows.Err()
}

// GetSchemaDescription returns a human-readable description of how columns
// are classified for summarization.
func (s *Store) GetSchemaDescription() string {
	return `Columns are summarized by kind: numeric (smallint/integer/bigint/real/` +
		`double precision/numeric) and time (date/timestamp) columns are binned into ` +
		`histograms in-database; all other types are treated as categories with one ` +
		`bucket per distinct value.`
}
