package tx

import (
	"context"
	"fmt"
	"sync"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/pool"
	"github.com/n-takatsu/sqlbridge/statement"
	"github.com/n-takatsu/sqlbridge/value"
)

// State is the position of a transaction in its lifecycle.
type State int

const (
	StateActive State = iota
	StateCommitted
	StateRolledBack
)

// String returns "active", "committed" or "rolled back".
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Tx is one logical transaction bound to exactly one checked-out connection
// for its entire lifetime.
type Tx struct {
	mu sync.Mutex

	conn    *pool.Conn
	dialect driver.Dialect
	exec    *statement.Executor
	engine  string

	requested driver.IsolationLevel
	applied   driver.IsolationLevel

	savepoints []string
	state      State
}

// Begin acquires a connection from p and opens a transaction at the
// requested isolation level. The dialect may degrade to a stricter level;
// AppliedIsolation reports what the backend is actually running. Fails with
// *driver.UnsupportedIsolationLevelError when the engine can express neither
// the requested level nor a stricter one.
func Begin(ctx context.Context, p *pool.Pool, exec *statement.Executor, level driver.IsolationLevel) (*Tx, error) {
	if !level.Valid() {
		return nil, &driver.UnsupportedIsolationLevelError{Engine: p.Engine(), Level: level}
	}

	dialect := p.Dialect()
	stmts, applied, err := dialect.BeginTransaction(level)
	if err != nil {
		return nil, err
	}

	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range stmts {
		if err := conn.Raw().ExecRaw(ctx, s); err != nil {
			conn.MarkBroken()
			conn.Release()
			return nil, fmt.Errorf("begin transaction: %w", err)
		}
	}

	return &Tx{
		conn:      conn,
		dialect:   dialect,
		exec:      exec,
		engine:    p.Engine(),
		requested: level,
		applied:   applied,
		state:     StateActive,
	}, nil
}

// State returns the transaction's current lifecycle state.
func (t *Tx) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RequestedIsolation returns the isolation level the caller asked for.
func (t *Tx) RequestedIsolation() driver.IsolationLevel { return t.requested }

// AppliedIsolation returns the isolation level the backend actually runs,
// which is the requested level or a stricter one.
func (t *Tx) AppliedIsolation() driver.IsolationLevel { return t.applied }

// Savepoints returns a copy of the active savepoint stack, oldest first.
func (t *Tx) Savepoints() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]string, len(t.savepoints))
	copy(cp, t.savepoints)
	return cp
}

// Query runs a parameterized query inside the transaction.
func (t *Tx) Query(ctx context.Context, template string, params ...value.Value) (*driver.ResultSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return nil, err
	}
	rs, err := t.exec.Query(ctx, t.conn.Raw(), t.engine, template, params)
	if err != nil {
		t.taintOn(err)
		return nil, err
	}
	return rs, nil
}

// Exec runs a parameterized statement inside the transaction and returns the
// number of affected rows.
func (t *Tx) Exec(ctx context.Context, template string, params ...value.Value) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return 0, err
	}
	res, err := t.exec.Exec(ctx, t.conn.Raw(), t.engine, template, params)
	if err != nil {
		t.taintOn(err)
		return 0, err
	}
	return res.RowsAffected, nil
}

// Savepoint establishes a named, nestable rollback point. Names must be
// plain SQL identifiers and unique within the transaction.
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return err
	}
	if err := driver.ValidateIdentifier(name); err != nil {
		return err
	}
	if t.savepointIndex(name) >= 0 {
		return &DuplicateSavepointError{Name: name}
	}
	if err := t.conn.Raw().ExecRaw(ctx, t.dialect.CreateSavepoint(name)); err != nil {
		t.taintOn(err)
		return fmt.Errorf("savepoint %q: %w", name, err)
	}
	t.savepoints = append(t.savepoints, name)
	return nil
}

// RollbackToSavepoint discards all effects and savepoints established after
// name. The named savepoint itself stays on the stack and can be rolled back
// to again, matching the backends' SAVEPOINT semantics.
func (t *Tx) RollbackToSavepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return err
	}
	idx := t.savepointIndex(name)
	if idx < 0 {
		return &UnknownSavepointError{Name: name}
	}
	if err := t.conn.Raw().ExecRaw(ctx, t.dialect.RollbackToSavepoint(name)); err != nil {
		t.taintOn(err)
		return fmt.Errorf("rollback to savepoint %q: %w", name, err)
	}
	t.savepoints = t.savepoints[:idx+1]
	return nil
}

// ReleaseSavepoint drops name and everything above it from the stack without
// discarding any effects.
func (t *Tx) ReleaseSavepoint(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return err
	}
	idx := t.savepointIndex(name)
	if idx < 0 {
		return &UnknownSavepointError{Name: name}
	}
	if err := t.conn.Raw().ExecRaw(ctx, t.dialect.ReleaseSavepoint(name)); err != nil {
		t.taintOn(err)
		return fmt.Errorf("release savepoint %q: %w", name, err)
	}
	t.savepoints = t.savepoints[:idx]
	return nil
}

// Commit makes the transaction's effects durable and moves it to the
// Committed state. Savepoints still open at commit time are released
// implicitly by every supported backend; the stack is simply cleared.
//
// A serialization or deadlock failure reported by the backend at commit time
// surfaces as *TransactionConflictError; the backend has already aborted the
// transaction, so the state becomes RolledBack and the connection is
// destroyed. The conflict is reported, never retried, by this layer.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return err
	}

	if err := t.conn.Raw().ExecRaw(ctx, t.dialect.Commit()); err != nil {
		t.conn.MarkBroken()
		t.finish(StateRolledBack)
		if t.dialect.IsSerializationFailure(err) {
			return &TransactionConflictError{Cause: err}
		}
		return fmt.Errorf("commit: %w", err)
	}

	t.finish(StateCommitted)
	return nil
}

// Rollback discards all effects since Begin and moves the transaction to the
// RolledBack state.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureActive(); err != nil {
		return err
	}

	err := t.conn.Raw().ExecRaw(ctx, t.dialect.Rollback())
	if err != nil {
		t.conn.MarkBroken()
	}
	t.finish(StateRolledBack)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// ensureActive rejects operations on a terminal transaction with no side
// effect. Callers must hold t.mu.
func (t *Tx) ensureActive() error {
	if t.state != StateActive {
		return &TransactionClosedError{State: t.state}
	}
	return nil
}

// finish moves the transaction to a terminal state and returns the
// connection to the pool (the pool destroys it if it was marked broken).
// Callers must hold t.mu.
func (t *Tx) finish(terminal State) {
	t.state = terminal
	t.savepoints = nil
	t.conn.Release()
}

// taintOn marks the connection broken for any error the backend produced
// while the transaction was active. A parameter-count mismatch is caught
// before reaching the backend and leaves the connection clean.
func (t *Tx) taintOn(err error) {
	if driver.IsParameterCountMismatch(err) {
		return
	}
	t.conn.MarkBroken()
}

func (t *Tx) savepointIndex(name string) int {
	for i, sp := range t.savepoints {
		if sp == name {
			return i
		}
	}
	return -1
}
