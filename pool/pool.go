package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/n-takatsu/sqlbridge/driver"
)

// Pool owns a bounded set of live connections to one backend target.
// It is the only sqlbridge structure shared across concurrent callers; all
// bookkeeping is serialized internally.
type Pool struct {
	connector driver.Connector
	cfg       Config

	// sem bounds the number of simultaneously checked-out connections.
	sem *semaphore.Weighted

	mu      sync.Mutex
	idle    []*Conn // LIFO: most recently released at the tail
	numOpen int
	closed  bool

	stopSweep chan struct{}
	sweepDone chan struct{}

	acquires  atomic.Int64
	timeouts  atomic.Int64
	destroyed atomic.Int64
}

// Conn is a pooled connection. While checked out it is exclusively owned by
// one caller; it must never be shared between goroutines.
type Conn struct {
	pool      *Pool
	conn      driver.Conn
	createdAt time.Time
	lastUsed  time.Time

	released atomic.Bool
	broken   atomic.Bool
}

// Raw exposes the underlying adapter connection.
func (c *Conn) Raw() driver.Conn { return c.conn }

// MarkBroken flags the connection as tainted. A broken connection is
// destroyed on release instead of being returned to the idle set.
func (c *Conn) MarkBroken() { c.broken.Store(true) }

// Broken reports whether the connection has been flagged as tainted.
func (c *Conn) Broken() bool { return c.broken.Load() }

// Age returns how long ago the connection was opened.
func (c *Conn) Age() time.Duration { return time.Since(c.createdAt) }

// Release returns the connection to the pool. Releasing an already-released
// connection is a logged no-op, never a double-counted idle slot.
func (c *Conn) Release() { c.pool.Release(c) }

// Stats is a point-in-time snapshot of pool accounting.
type Stats struct {
	// Open is the number of live connections, idle plus in use.
	Open int
	// Idle is the number of connections waiting in the idle set.
	Idle int
	// InUse is the number of currently checked-out connections.
	InUse int
	// MaxSize is the configured capacity.
	MaxSize int
	// Acquires counts successful acquisitions since the pool was created.
	Acquires int64
	// Timeouts counts acquisitions that failed with ErrPoolExhausted.
	Timeouts int64
	// Destroyed counts connections closed by eviction, taint or teardown.
	Destroyed int64
}

// New creates a pool for the given connector and starts the background
// sweep. Connections are opened lazily on first acquisition.
func New(connector driver.Connector, cfg Config) *Pool {
	cfg = cfg.withDefaults()
	p := &Pool{
		connector: connector,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxSize)),
		stopSweep: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	go p.sweepLoop()
	return p
}

// Acquire returns an exclusively owned connection, waiting at most the
// configured acquire timeout. Idle connections are reused LIFO; a new
// connection is dialed only when none are idle. Fails with ErrPoolExhausted
// once the timeout elapses with no connection available.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	acquireCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	if err := p.sem.Acquire(acquireCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.timeouts.Add(1)
		return nil, fmt.Errorf("%w (waited %s)", ErrPoolExhausted, p.cfg.AcquireTimeout)
	}

	if conn := p.popIdle(); conn != nil {
		conn.released.Store(false)
		p.acquires.Add(1)
		return conn, nil
	}

	raw, err := p.connector.Connect(acquireCtx)
	if err != nil {
		p.sem.Release(1)
		if acquireCtx.Err() != nil && ctx.Err() == nil {
			p.timeouts.Add(1)
			return nil, fmt.Errorf("%w (dial timed out after %s)", ErrPoolExhausted, p.cfg.AcquireTimeout)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailed, p.connector.Engine(), err)
	}

	now := time.Now()
	conn := &Conn{pool: p, conn: raw, createdAt: now, lastUsed: now}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		_ = raw.Close()
		return nil, ErrPoolClosed
	}
	p.numOpen++
	p.mu.Unlock()

	p.acquires.Add(1)
	return conn, nil
}

// Release returns conn to the idle set, or destroys it when it is broken,
// past its maximum lifetime, or the pool has been closed. A second Release
// of the same checkout is a logged no-op.
func (p *Pool) Release(conn *Conn) {
	if conn == nil {
		return
	}
	if conn.released.Swap(true) {
		p.cfg.Logger.Warn("connection released twice, ignoring", nil, map[string]interface{}{
			"engine": p.connector.Engine(),
		})
		return
	}

	conn.lastUsed = time.Now()

	destroy := conn.broken.Load() || conn.Age() >= p.cfg.MaxLifetime

	p.mu.Lock()
	if p.closed || destroy {
		p.numOpen--
		p.mu.Unlock()
		p.destroy(conn)
	} else {
		p.idle = append(p.idle, conn)
		p.mu.Unlock()
	}
	p.sem.Release(1)
}

// HealthCheck runs a lightweight no-op round trip against one pooled
// connection, or a scratch connection when none are idle. It reports
// liveness as a boolean and never raises on transient failure.
func (p *Pool) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.HealthCheckTimeout)
	defer cancel()

	if conn := p.popIdle(); conn != nil {
		err := conn.conn.Ping(ctx)
		if err != nil {
			p.cfg.Logger.Warn("health check ping failed", err, nil)
			p.mu.Lock()
			p.numOpen--
			p.mu.Unlock()
			p.destroy(conn)
			return false
		}
		p.mu.Lock()
		if p.closed {
			p.numOpen--
			p.mu.Unlock()
			p.destroy(conn)
			return false
		}
		p.idle = append(p.idle, conn)
		p.mu.Unlock()
		return true
	}

	raw, err := p.connector.Connect(ctx)
	if err != nil {
		p.cfg.Logger.Warn("health check dial failed", err, nil)
		return false
	}
	defer func() { _ = raw.Close() }()
	if err := raw.Ping(ctx); err != nil {
		p.cfg.Logger.Warn("health check ping failed", err, nil)
		return false
	}
	return true
}

// Stats returns a snapshot of pool accounting.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	open, idle := p.numOpen, len(p.idle)
	p.mu.Unlock()
	return Stats{
		Open:      open,
		Idle:      idle,
		InUse:     open - idle,
		MaxSize:   p.cfg.MaxSize,
		Acquires:  p.acquires.Load(),
		Timeouts:  p.timeouts.Load(),
		Destroyed: p.destroyed.Load(),
	}
}

// Engine returns the adapter name of the pooled backend.
func (p *Pool) Engine() string { return p.connector.Engine() }

// Dialect returns the transaction-control dialect of the pooled backend.
func (p *Pool) Dialect() driver.Dialect { return p.connector.Dialect() }

// Close tears the pool down: the sweep stops, idle connections are closed,
// and connections still checked out are destroyed on release.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.numOpen -= len(idle)
	p.mu.Unlock()

	close(p.stopSweep)
	<-p.sweepDone

	for _, conn := range idle {
		p.destroy(conn)
	}
	p.cfg.Logger.Info("pool closed", nil, map[string]interface{}{
		"engine": p.connector.Engine(),
	})
}

// popIdle returns the most recently released idle connection that is still
// within its lifetime, destroying any expired connections it skips over.
func (p *Pool) popIdle() *Conn {
	var expired []*Conn
	var found *Conn

	p.mu.Lock()
	for len(p.idle) > 0 {
		conn := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if conn.Age() >= p.cfg.MaxLifetime {
			p.numOpen--
			expired = append(expired, conn)
			continue
		}
		found = conn
		break
	}
	p.mu.Unlock()

	for _, conn := range expired {
		p.destroy(conn)
	}
	return found
}

func (p *Pool) destroy(conn *Conn) {
	p.destroyed.Add(1)
	if err := conn.conn.Close(); err != nil {
		p.cfg.Logger.Debug("error closing connection", err, nil)
	}
}

// sweepLoop periodically destroys idle connections past the idle timeout and
// any connection past the maximum lifetime, bounding staleness instead of
// waiting for the next acquisition.
func (p *Pool) sweepLoop() {
	defer close(p.sweepDone)

	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopSweep:
			return
		case <-ticker.C:
			p.sweep(time.Now())
		}
	}
}

func (p *Pool) sweep(now time.Time) {
	var evict []*Conn

	p.mu.Lock()
	kept := p.idle[:0]
	for _, conn := range p.idle {
		idleFor := now.Sub(conn.lastUsed)
		if idleFor >= p.cfg.IdleTimeout || conn.Age() >= p.cfg.MaxLifetime {
			p.numOpen--
			evict = append(evict, conn)
			continue
		}
		kept = append(kept, conn)
	}
	p.idle = kept
	p.mu.Unlock()

	for _, conn := range evict {
		p.destroy(conn)
	}
	if len(evict) > 0 {
		p.cfg.Logger.Debug("sweep evicted idle connections", nil, map[string]interface{}{
			"engine":  p.connector.Engine(),
			"evicted": len(evict),
		})
	}
}
