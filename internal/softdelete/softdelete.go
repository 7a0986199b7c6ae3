// Package softdelete owns reads and deletes of tables carrying a deleted_at
// column. Every read built here filters out deleted rows.
package softdelete

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"afterschool/internal/store"
)

const live = "deleted_at IS NULL"

// Table describes a soft-deletable table and the columns read from it.
type Table struct {
	Name    string
	Columns []string
}

// Select builds a query over live rows. where may be empty; suffix is
// appended verbatim (ORDER BY, LIMIT).
func (t Table) Select(where, suffix string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(t.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(t.Name)
	b.WriteString(" WHERE ")
	b.WriteString(filter(live, where))
	if suffix != "" {
		b.WriteString(" ")
		b.WriteString(suffix)
	}
	return b.String()
}

// FindOne returns the first live row matching where.
func (t Table) FindOne(ctx context.Context, q store.Queryer, where string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, t.Select(where, "LIMIT 1"), args...)
}

// Query returns every live row matching where.
func (t Table) Query(ctx context.Context, q store.Queryer, where, suffix string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, t.Select(where, suffix), args...)
}

// Exists reports whether a live row matches where.
func (t Table) Exists(ctx context.Context, q store.Queryer, where string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+t.Name+" WHERE "+filter(live, where)+" LIMIT 1", args...).Scan(&one)
	if store.NoRows(err) {
		return false, nil
	}
	return err == nil, err
}

// MarkDeleted stamps deleted_at and updated_at on live rows matching where and
// returns how many rows it touched. The timestamp binds after args.
func (t Table) MarkDeleted(ctx context.Context, q store.Queryer, now time.Time, where string, args ...any) (int64, error) {
	ts := "$" + strconv.Itoa(len(args)+1)
	res, err := q.ExecContext(ctx,
		"UPDATE "+t.Name+" SET deleted_at = "+ts+", updated_at = "+ts+" WHERE "+filter(live, where),
		append(args, now)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LiveAs is the live predicate for the table under alias, for joins.
func (t Table) LiveAs(alias string) string {
	return alias + "." + live
}

// ColumnsAs lists the table columns qualified by alias.
func (t Table) ColumnsAs(alias string) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func filter(base, where string) string {
	if where == "" {
		return base
	}
	return base + " AND (" + where + ")"
}
