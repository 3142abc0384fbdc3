package statement

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/value"
)

// Logger is the logging interface the executor accepts. It matches the
// sqlbridge/logger package so a *logger.Logger can be passed directly.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Observer receives one callback per executed statement. The metrics
// package provides a prometheus-backed implementation.
type Observer interface {
	ObserveStatement(engine, kind string, elapsed time.Duration, err error)
}

// Config tunes one executor.
type Config struct {
	// DefaultQueryTimeout bounds every query or execute call that arrives
	// without an earlier deadline on its context. Default: 30 seconds.
	DefaultQueryTimeout time.Duration

	// SlowThreshold is the elapsed time above which a statement is logged
	// at warn level. Default: 1 second.
	SlowThreshold time.Duration

	// Logger is an optional structured logger.
	Logger Logger

	// Observer is an optional per-statement metrics hook.
	Observer Observer

	// Tracer is an optional OpenTelemetry tracer; when nil spans are no-ops.
	Tracer trace.Tracer
}

const (
	DefaultQueryTimeout  = 30 * time.Second
	DefaultSlowThreshold = time.Second
)

// Executor binds parameters and runs prepared statements on a connection
// supplied per call. It holds no connection state and is safe for concurrent
// use.
type Executor struct {
	cfg Config
}

// New creates an executor, applying package defaults for zero config fields.
func New(cfg Config) *Executor {
	if cfg.DefaultQueryTimeout <= 0 {
		cfg.DefaultQueryTimeout = DefaultQueryTimeout
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = DefaultSlowThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("sqlbridge/statement")
	}
	return &Executor{cfg: cfg}
}

// Prepare compiles template on conn, hitting the connection's statement
// cache when the exact template text was prepared before.
func (e *Executor) Prepare(ctx context.Context, conn driver.Conn, engine, template string) (driver.Stmt, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	ctx, span := e.startSpan(ctx, engine, "prepare", template, 0)
	defer span.End()

	st, err := conn.Prepare(ctx, template)
	if err != nil {
		e.recordError(span, err)
		return nil, err
	}
	return st, nil
}

// Query prepares template (cached per connection), binds params positionally
// and executes, returning the full result set.
func (e *Executor) Query(ctx context.Context, conn driver.Conn, engine, template string, params []value.Value) (*driver.ResultSet, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	ctx, span := e.startSpan(ctx, engine, "query", template, len(params))
	defer span.End()

	start := time.Now()
	st, err := conn.Prepare(ctx, template)
	if err != nil {
		e.recordError(span, err)
		e.observe(engine, "query", time.Since(start), err)
		return nil, err
	}
	if err := checkParamCount(st, params); err != nil {
		e.recordError(span, err)
		return nil, err
	}

	rs, err := st.Query(ctx, params)
	elapsed := time.Since(start)
	e.observe(engine, "query", elapsed, err)
	if err != nil {
		e.recordError(span, err)
		e.cfg.Logger.Debug("query failed", err, map[string]interface{}{
			"engine": engine,
		})
		return nil, err
	}
	span.SetAttributes(attribute.Int("db.rows_returned", rs.Len()))
	e.logSlow(engine, "query", elapsed)
	return rs, nil
}

// Exec prepares template (cached per connection), binds params positionally
// and executes a statement that returns no rows.
func (e *Executor) Exec(ctx context.Context, conn driver.Conn, engine, template string, params []value.Value) (driver.ExecResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	ctx, span := e.startSpan(ctx, engine, "execute", template, len(params))
	defer span.End()

	start := time.Now()
	st, err := conn.Prepare(ctx, template)
	if err != nil {
		e.recordError(span, err)
		e.observe(engine, "execute", time.Since(start), err)
		return driver.ExecResult{}, err
	}
	if err := checkParamCount(st, params); err != nil {
		e.recordError(span, err)
		return driver.ExecResult{}, err
	}

	res, err := st.Exec(ctx, params)
	elapsed := time.Since(start)
	e.observe(engine, "execute", elapsed, err)
	if err != nil {
		e.recordError(span, err)
		e.cfg.Logger.Debug("execute failed", err, map[string]interface{}{
			"engine": engine,
		})
		return driver.ExecResult{}, err
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", res.RowsAffected))
	e.logSlow(engine, "execute", elapsed)
	return res, nil
}

// checkParamCount rejects a binding whose length disagrees with the
// template's placeholder count before anything reaches the backend. Engines
// that cannot report the count (NumParams < 0) defer the check to execution.
func checkParamCount(st driver.Stmt, params []value.Value) error {
	if n := st.NumParams(); n >= 0 && n != len(params) {
		return &driver.ParameterCountMismatchError{Expected: n, Got: len(params)}
	}
	return nil
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, has := ctx.Deadline(); has {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.cfg.DefaultQueryTimeout)
}

func (e *Executor) startSpan(ctx context.Context, engine, kind, template string, paramCount int) (context.Context, trace.Span) {
	return e.cfg.Tracer.Start(ctx, "sqlbridge."+kind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", engine),
			attribute.String("db.statement", template),
			attribute.Int("db.parameter_count", paramCount),
		),
	)
}

func (e *Executor) recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (e *Executor) observe(engine, kind string, elapsed time.Duration, err error) {
	if e.cfg.Observer != nil {
		e.cfg.Observer.ObserveStatement(engine, kind, elapsed, err)
	}
}

func (e *Executor) logSlow(engine, kind string, elapsed time.Duration) {
	if elapsed >= e.cfg.SlowThreshold {
		e.cfg.Logger.Warn("slow statement", nil, map[string]interface{}{
			"engine":     engine,
			"kind":       kind,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
