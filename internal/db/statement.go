package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Result reports the effect of a mutating statement.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Row is one result row keyed by column name.
type Row map[string]any

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Statement is a parameterized statement with positional (?) placeholders.
type Statement struct {
	text  string
	store *Store
	tx    *sql.Tx // nil outside a transaction
}

// Text returns the statement text.
func (st *Statement) Text() string { return st.text }

// Run executes a mutating statement. Outside a transaction the backing file
// has been rewritten by the time Run returns.
func (st *Statement) Run(ctx context.Context, args ...any) (Result, error) {
	if st.tx != nil {
		return st.run(ctx, st.tx, args)
	}
	st.store.mu.Lock()
	defer st.store.mu.Unlock()
	res, err := st.run(ctx, st.store.conn, args)
	if err != nil {
		return Result{}, err
	}
	if err := st.store.persistLocked(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Get returns the first row, or nil when the query matches nothing.
func (st *Statement) Get(ctx context.Context, args ...any) (Row, error) {
	rows, err := st.query(ctx, args, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// All returns every row the query matches.
func (st *Statement) All(ctx context.Context, args ...any) ([]Row, error) {
	return st.query(ctx, args, 0)
}

func (st *Statement) run(ctx context.Context, q execQuerier, args []any) (Result, error) {
	res, err := q.ExecContext(ctx, st.text, args...)
	if err != nil {
		return Result{}, st.store.fail(st.text, err)
	}
	var out Result
	out.LastInsertID, _ = res.LastInsertId()
	out.RowsAffected, _ = res.RowsAffected()
	return out, nil
}

func (st *Statement) query(ctx context.Context, args []any, limit int) ([]Row, error) {
	var q execQuerier = st.tx
	if st.tx == nil {
		st.store.mu.RLock()
		defer st.store.mu.RUnlock()
		q = st.store.conn
	}
	rows, err := q.QueryContext(ctx, st.text, args...)
	if err != nil {
		return nil, st.store.fail(st.text, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, st.store.fail(st.text, err)
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, st.store.fail(st.text, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, st.store.fail(st.text, err)
	}
	return out, nil
}

// timeLayouts are the text forms SQLite's CURRENT_TIMESTAMP and the driver
// produce.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// Int64 returns the column as an integer; NULL and unparsable values are 0.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// NullInt64 returns nil for NULL columns.
func (r Row) NullInt64(col string) *int64 {
	if r[col] == nil {
		return nil
	}
	n := r.Int64(col)
	return &n
}

// String returns the column as text; NULL is "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format("2006-01-02 15:04:05")
	}
	return ""
}

// Bool treats any non-zero integer as true.
func (r Row) Bool(col string) bool {
	return r.Int64(col) != 0
}

// Time returns the column as a UTC time; NULL and unparsable values are zero.
func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v.UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	}
	return time.Time{}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
