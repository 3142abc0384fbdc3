package tx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/pool"
	"github.com/n-takatsu/sqlbridge/statement"
	"github.com/n-takatsu/sqlbridge/tx"
	"github.com/n-takatsu/sqlbridge/value"
)

// fakeStmt executes against the owning fakeConn's scripted responses.
type fakeStmt struct {
	conn      *fakeConn
	numParams int
}

func (s *fakeStmt) NumParams() int { return s.numParams }
func (s *fakeStmt) Query(ctx context.Context, params []value.Value) (*driver.ResultSet, error) {
	if s.conn.stmtErr != nil {
		return nil, s.conn.stmtErr
	}
	return &driver.ResultSet{
		Columns: []driver.Column{{Name: "n", Tag: value.TagInt64}},
		Rows:    [][]value.Value{{value.Int64(1)}},
	}, nil
}
func (s *fakeStmt) Exec(ctx context.Context, params []value.Value) (driver.ExecResult, error) {
	if s.conn.stmtErr != nil {
		return driver.ExecResult{}, s.conn.stmtErr
	}
	return driver.ExecResult{RowsAffected: 1}, nil
}
func (s *fakeStmt) Close() error { return nil }

// fakeConn records every raw statement it runs.
type fakeConn struct {
	raw       []string
	numParams int
	stmtErr   error // returned by statement Query/Exec
	rawErr    error // returned by ExecRaw for matching SQL
	rawErrSQL string
	closed    bool
}

func (c *fakeConn) Prepare(ctx context.Context, template string) (driver.Stmt, error) {
	return &fakeStmt{conn: c, numParams: c.numParams}, nil
}
func (c *fakeConn) ExecRaw(ctx context.Context, sql string) error {
	c.raw = append(c.raw, sql)
	if c.rawErr != nil && (c.rawErrSQL == "" || c.rawErrSQL == sql) {
		return c.rawErr
	}
	return nil
}
func (c *fakeConn) Ping(ctx context.Context) error                    { return nil }
func (c *fakeConn) ServerVersion(ctx context.Context) (string, error) { return "fake", nil }
func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// fakeDialect speaks generic SQL and treats conflictErr as a serialization
// failure.
type fakeDialect struct {
	conflictErr error
}

func (d fakeDialect) BeginTransaction(level driver.IsolationLevel) ([]string, driver.IsolationLevel, error) {
	if !level.Valid() {
		return nil, 0, &driver.UnsupportedIsolationLevelError{Engine: "fake", Level: level}
	}
	return []string{"BEGIN ISOLATION LEVEL " + level.String()}, level, nil
}
func (d fakeDialect) CreateSavepoint(name string) string     { return "SAVEPOINT " + name }
func (d fakeDialect) RollbackToSavepoint(name string) string { return "ROLLBACK TO SAVEPOINT " + name }
func (d fakeDialect) ReleaseSavepoint(name string) string    { return "RELEASE SAVEPOINT " + name }
func (d fakeDialect) Commit() string                         { return "COMMIT" }
func (d fakeDialect) Rollback() string                       { return "ROLLBACK" }
func (d fakeDialect) IsSerializationFailure(err error) bool {
	return d.conflictErr != nil && errors.Is(err, d.conflictErr)
}

type fakeConnector struct {
	conn    *fakeConn
	dialect fakeDialect
}

func (f *fakeConnector) Engine() string          { return "fake" }
func (f *fakeConnector) Dialect() driver.Dialect { return f.dialect }
func (f *fakeConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return f.conn, nil
}

func newTestTx(t *testing.T, connector *fakeConnector) *tx.Tx {
	t.Helper()
	p := pool.New(connector, pool.Config{MaxSize: 1})
	t.Cleanup(p.Close)

	transaction, err := tx.Begin(t.Context(), p, statement.New(statement.Config{}), driver.ReadCommitted)
	require.NoError(t, err)
	return transaction
}

func TestBeginRunsDialectStatements(t *testing.T) {
	conn := &fakeConn{}
	transaction := newTestTx(t, &fakeConnector{conn: conn})

	assert.Equal(t, []string{"BEGIN ISOLATION LEVEL READ COMMITTED"}, conn.raw)
	assert.Equal(t, tx.StateActive, transaction.State())
	assert.Equal(t, driver.ReadCommitted, transaction.RequestedIsolation())
	assert.Equal(t, driver.ReadCommitted, transaction.AppliedIsolation())

	require.NoError(t, transaction.Commit(t.Context()))
}

func TestBeginRejectsInvalidLevel(t *testing.T) {
	p := pool.New(&fakeConnector{conn: &fakeConn{}}, pool.Config{MaxSize: 1})
	t.Cleanup(p.Close)

	_, err := tx.Begin(t.Context(), p, statement.New(statement.Config{}), driver.IsolationLevel(42))
	var unsupported *driver.UnsupportedIsolationLevelError
	assert.ErrorAs(t, err, &unsupported)
}

func TestQueryAndExec(t *testing.T) {
	conn := &fakeConn{numParams: 1}
	transaction := newTestTx(t, &fakeConnector{conn: conn})

	rs, err := transaction.Query(t.Context(), "SELECT n FROM t WHERE id = ?", value.Int64(1))
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())

	affected, err := transaction.Exec(t.Context(), "UPDATE t SET n = ? ", value.Int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	require.NoError(t, transaction.Commit(t.Context()))
}

func TestSavepointLifecycle(t *testing.T) {
	conn := &fakeConn{}
	transaction := newTestTx(t, &fakeConnector{conn: conn})

	require.NoError(t, transaction.Savepoint(t.Context(), "a"))
	require.NoError(t, transaction.Savepoint(t.Context(), "b"))
	require.NoError(t, transaction.Savepoint(t.Context(), "c"))
	assert.Equal(t, []string{"a", "b", "c"}, transaction.Savepoints())

	// Rolling back to a discards b and c but keeps a reusable.
	require.NoError(t, transaction.RollbackToSavepoint(t.Context(), "a"))
	assert.Equal(t, []string{"a"}, transaction.Savepoints())
	require.NoError(t, transaction.RollbackToSavepoint(t.Context(), "a"))

	// Release drops the name itself.
	require.NoError(t, transaction.ReleaseSavepoint(t.Context(), "a"))
	assert.Empty(t, transaction.Savepoints())

	assert.Contains(t, conn.raw, "SAVEPOINT a")
	assert.Contains(t, conn.raw, "ROLLBACK TO SAVEPOINT a")
	assert.Contains(t, conn.raw, "RELEASE SAVEPOINT a")

	require.NoError(t, transaction.Commit(t.Context()))
}

func TestDuplicateSavepoint(t *testing.T) {
	transaction := newTestTx(t, &fakeConnector{conn: &fakeConn{}})

	require.NoError(t, transaction.Savepoint(t.Context(), "a"))
	err := transaction.Savepoint(t.Context(), "a")

	var dup *tx.DuplicateSavepointError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Name)

	require.NoError(t, transaction.Rollback(t.Context()))
}

func TestUnknownSavepoint(t *testing.T) {
	transaction := newTestTx(t, &fakeConnector{conn: &fakeConn{}})

	var unknown *tx.UnknownSavepointError
	assert.ErrorAs(t, transaction.RollbackToSavepoint(t.Context(), "ghost"), &unknown)
	assert.ErrorAs(t, transaction.ReleaseSavepoint(t.Context(), "ghost"), &unknown)

	// Released savepoints are unknown afterwards.
	require.NoError(t, transaction.Savepoint(t.Context(), "a"))
	require.NoError(t, transaction.ReleaseSavepoint(t.Context(), "a"))
	assert.ErrorAs(t, transaction.RollbackToSavepoint(t.Context(), "a"), &unknown)

	require.NoError(t, transaction.Rollback(t.Context()))
}

func TestSavepointNameValidation(t *testing.T) {
	transaction := newTestTx(t, &fakeConnector{conn: &fakeConn{}})

	for _, name := range []string{"", "1a", "a b", "a;DROP TABLE x", "naïve"} {
		assert.ErrorIs(t, transaction.Savepoint(t.Context(), name), driver.ErrInvalidIdentifier, "name %q", name)
	}

	require.NoError(t, transaction.Rollback(t.Context()))
}

func TestReleaseDropsNestedSavepoints(t *testing.T) {
	transaction := newTestTx(t, &fakeConnector{conn: &fakeConn{}})

	require.NoError(t, transaction.Savepoint(t.Context(), "a"))
	require.NoError(t, transaction.Savepoint(t.Context(), "b"))
	require.NoError(t, transaction.ReleaseSavepoint(t.Context(), "a"))
	assert.Empty(t, transaction.Savepoints())

	require.NoError(t, transaction.Rollback(t.Context()))
}

func TestCommitIsTerminal(t *testing.T) {
	conn := &fakeConn{}
	transaction := newTestTx(t, &fakeConnector{conn: conn})

	require.NoError(t, transaction.Commit(t.Context()))
	assert.Equal(t, tx.StateCommitted, transaction.State())
	assert.Contains(t, conn.raw, "COMMIT")

	var closed *tx.TransactionClosedError
	_, err := transaction.Query(t.Context(), "SELECT 1")
	assert.ErrorAs(t, err, &closed)
	assert.ErrorAs(t, transaction.Commit(t.Context()), &closed)
	assert.ErrorAs(t, transaction.Rollback(t.Context()), &closed)
	assert.ErrorAs(t, transaction.Savepoint(t.Context(), "late"), &closed)
	assert.True(t, tx.IsTransactionClosed(err))
}

func TestRollbackIsTerminal(t *testing.T) {
	conn := &fakeConn{}
	transaction := newTestTx(t, &fakeConnector{conn: conn})

	require.NoError(t, transaction.Rollback(t.Context()))
	assert.Equal(t, tx.StateRolledBack, transaction.State())
	assert.Contains(t, conn.raw, "ROLLBACK")

	_, err := transaction.Exec(t.Context(), "UPDATE t SET n = 1")
	assert.True(t, tx.IsTransactionClosed(err))
}

func TestCommitConflict(t *testing.T) {
	conflict := errors.New("serialization failure")
	conn := &fakeConn{rawErr: conflict, rawErrSQL: "COMMIT"}
	connector := &fakeConnector{conn: conn, dialect: fakeDialect{conflictErr: conflict}}
	transaction := newTestTx(t, connector)

	err := transaction.Commit(t.Context())
	require.Error(t, err)
	assert.True(t, tx.IsConflict(err))
	assert.ErrorIs(t, err, conflict)

	// The backend already aborted: state is rolled back, connection destroyed.
	assert.Equal(t, tx.StateRolledBack, transaction.State())
	assert.True(t, conn.closed)
}

func TestBackendErrorTaintsConnection(t *testing.T) {
	conn := &fakeConn{stmtErr: &driver.BackendError{Code: "23505", Message: "duplicate key"}}
	connector := &fakeConnector{conn: conn}

	p := pool.New(connector, pool.Config{MaxSize: 1})
	t.Cleanup(p.Close)
	transaction, err := tx.Begin(t.Context(), p, statement.New(statement.Config{}), driver.ReadCommitted)
	require.NoError(t, err)

	_, execErr := transaction.Exec(t.Context(), "INSERT INTO t VALUES (1)")
	require.Error(t, execErr)

	require.NoError(t, transaction.Rollback(t.Context()))
	assert.True(t, conn.closed, "tainted connection must be destroyed on release")
}

func TestParameterMismatchDoesNotTaint(t *testing.T) {
	conn := &fakeConn{numParams: 2}
	connector := &fakeConnector{conn: conn}

	p := pool.New(connector, pool.Config{MaxSize: 1})
	t.Cleanup(p.Close)
	transaction, err := tx.Begin(t.Context(), p, statement.New(statement.Config{}), driver.ReadCommitted)
	require.NoError(t, err)

	_, execErr := transaction.Exec(t.Context(), "INSERT INTO t VALUES (?, ?)", value.Int64(1))
	require.Error(t, execErr)
	assert.True(t, driver.IsParameterCountMismatch(execErr))

	// The transaction stays usable and the connection stays clean.
	_, execErr = transaction.Exec(t.Context(), "INSERT INTO t VALUES (?, ?)", value.Int64(1), value.Int64(2))
	require.NoError(t, execErr)

	require.NoError(t, transaction.Commit(t.Context()))
	assert.False(t, conn.closed)
}
