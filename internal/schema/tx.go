package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Row is one table row keyed by column name. Values carry SQLite storage
// classes: int64, float64, string, []byte or nil.
type Row map[string]any

// String returns the column as text, or "" when absent or NULL.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the column as an integer, or 0 when absent or not numeric.
func (r Row) Int(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Tx is the transaction an upgrade transform runs in.
type Tx struct {
	tx *sql.Tx
}

// Exec runs a statement inside the upgrade transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("executing %q: %w", firstLine(query), err)
	}
	return nil
}

// Table returns a handle for name. The handle reports whether the table
// exists; reads on an absent table return nothing and writes are no-ops.
func (t *Tx) Table(ctx context.Context, name string) (*Table, error) {
	exists, err := tableExists(ctx, t.tx, name)
	if err != nil {
		return nil, err
	}
	return &Table{tx: t.tx, name: name, exists: exists}, nil
}

// Table is an absence-tolerant handle on one table.
type Table struct {
	tx     *sql.Tx
	name   string
	exists bool
}

func (tb *Table) Name() string { return tb.name }
func (tb *Table) Exists() bool { return tb.exists }

// All returns every row ordered by rowid.
func (tb *Table) All(ctx context.Context) ([]Row, error) {
	if !tb.exists {
		return nil, nil
	}
	rows, err := tb.tx.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q ORDER BY rowid", tb.name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", tb.name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", tb.name, err)
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", tb.name, err)
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			r[c] = vals[i]
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Insert writes one row. Columns are taken from the row's keys.
func (tb *Table) Insert(ctx context.Context, r Row) error {
	if !tb.exists {
		return fmt.Errorf("inserting into %s: table does not exist", tb.name)
	}
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
		args[i] = r[c]
	}
	query := fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		tb.name, strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if _, err := tb.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting into %s: %w", tb.name, err)
	}
	return nil
}

// Clear deletes every row.
func (tb *Table) Clear(ctx context.Context) error {
	if !tb.exists {
		return nil
	}
	if _, err := tb.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q", tb.name)); err != nil {
		return fmt.Errorf("clearing %s: %w", tb.name, err)
	}
	return nil
}

// Count returns the number of rows, 0 for an absent table.
func (tb *Table) Count(ctx context.Context) (int, error) {
	if !tb.exists {
		return 0, nil
	}
	var n int
	if err := tb.tx.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", tb.name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", tb.name, err)
	}
	return n, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowsQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func tableExists(ctx context.Context, q queryer, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return n > 0, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
