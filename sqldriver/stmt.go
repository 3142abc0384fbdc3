package sqldriver

import (
	"context"
	stddriver "database/sql/driver"
	"fmt"
	"io"
	"time"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/value"
)

// Stmt is a compiled statement on one adapted connection.
type Stmt struct {
	conn     *Conn
	st       stddriver.Stmt
	template string
	cached   bool
}

// NumParams returns the placeholder count reported by the driver.
func (s *Stmt) NumParams() int { return s.st.NumInput() }

// Query binds params positionally, executes and drains all rows into an
// immutable result set.
func (s *Stmt) Query(ctx context.Context, params []value.Value) (*driver.ResultSet, error) {
	nv, err := s.encodeParams(params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := queryRaw(ctx, s.st, nv)
	if err != nil {
		return nil, s.conn.codec.TranslateError(err)
	}
	defer func() { _ = rows.Close() }()

	names := rows.Columns()
	typeNames := make([]string, len(names))
	if tn, ok := rows.(stddriver.RowsColumnTypeDatabaseTypeName); ok {
		for i := range names {
			typeNames[i] = tn.ColumnTypeDatabaseTypeName(i)
		}
	}

	columns := make([]driver.Column, len(names))
	for i, name := range names {
		columns[i] = driver.Column{Name: name, Tag: s.conn.codec.ColumnTag(typeNames[i])}
	}

	var out [][]value.Value
	dest := make([]stddriver.Value, len(names))
	for {
		err := rows.Next(dest)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, s.conn.codec.TranslateError(err)
		}
		row := make([]value.Value, len(dest))
		for i, cell := range dest {
			decoded, err := s.conn.codec.DecodeColumn(typeNames[i], cell)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", names[i], err)
			}
			row[i] = decoded
		}
		out = append(out, row)
	}

	// Declared types can be absent for computed columns; fall back to the
	// tag of the first non-null cell actually seen.
	for i := range columns {
		if typeNames[i] != "" {
			continue
		}
		for _, row := range out {
			if !row[i].IsNull() {
				columns[i].Tag = row[i].Tag()
				break
			}
		}
	}

	return &driver.ResultSet{
		Columns: columns,
		Rows:    out,
		Elapsed: time.Since(start),
	}, nil
}

// Exec binds params positionally and executes a statement returning no rows.
func (s *Stmt) Exec(ctx context.Context, params []value.Value) (driver.ExecResult, error) {
	nv, err := s.encodeParams(params)
	if err != nil {
		return driver.ExecResult{}, err
	}

	start := time.Now()
	res, err := execRaw(ctx, s.st, nv)
	if err != nil {
		return driver.ExecResult{}, s.conn.codec.TranslateError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return driver.ExecResult{RowsAffected: affected, Elapsed: time.Since(start)}, nil
}

// Close is a no-op for statements owned by the connection's cache; they are
// destroyed with the connection or on LRU eviction.
func (s *Stmt) Close() error {
	if s.cached {
		return nil
	}
	return s.st.Close()
}

func (s *Stmt) encodeParams(params []value.Value) ([]stddriver.NamedValue, error) {
	nv := make([]stddriver.NamedValue, len(params))
	for i, p := range params {
		encoded, err := s.conn.codec.EncodeParam(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		nv[i] = stddriver.NamedValue{Ordinal: i + 1, Value: encoded}
	}
	return nv, nil
}

func queryRaw(ctx context.Context, st stddriver.Stmt, nv []stddriver.NamedValue) (stddriver.Rows, error) {
	if qc, ok := st.(stddriver.StmtQueryContext); ok {
		return qc.QueryContext(ctx, nv)
	}
	vals := make([]stddriver.Value, len(nv))
	for i, v := range nv {
		vals[i] = v.Value
	}
	return st.Query(vals)
}

func execRaw(ctx context.Context, st stddriver.Stmt, nv []stddriver.NamedValue) (stddriver.Result, error) {
	if ec, ok := st.(stddriver.StmtExecContext); ok {
		return ec.ExecContext(ctx, nv)
	}
	vals := make([]stddriver.Value, len(nv))
	for i, v := range nv {
		vals[i] = v.Value
	}
	return st.Exec(vals)
}
