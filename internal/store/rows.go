package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/sqlwrap/internal/value"
)

// Row is one result row. Columns and Values are parallel slices in the
// order the engine returned them.
type Row struct {
	Columns []string
	Values  []value.Value
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.Columns)
}

// Get returns the value of the first column named name.
func (r Row) Get(name string) (value.Value, bool) {
	for i, col := range r.Columns {
		if col == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Map returns the row keyed by column name. Later duplicates win.
func (r Row) Map() map[string]value.Value {
	m := make(map[string]value.Value, len(r.Columns))
	for i, col := range r.Columns {
		m[col] = r.Values[i]
	}
	return m
}

// MarshalJSON writes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, col := range r.Columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", col, err)
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// scanRows materializes rows. A limit of zero reads everything.
// The result is never nil.
func scanRows(rows *sql.Rows, limit int) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := []Row{}
	for rows.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		vals := make([]value.Value, len(cols))
		for i, src := range raw {
			v, err := value.FromColumn(src)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", cols[i], err)
			}
			vals[i] = v
		}
		out = append(out, Row{Columns: cols, Values: vals})

		if limit > 0 && len(out) == limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
