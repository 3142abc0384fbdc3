package pool

import "time"

// Config tunes one connection pool.
type Config struct {
	// MaxSize is the maximum number of simultaneously checked-out
	// connections. Default: 10.
	MaxSize int

	// AcquireTimeout bounds how long Acquire waits for a free connection
	// (including the dial, when a new connection must be opened) before
	// failing with ErrPoolExhausted. Default: 5 seconds.
	AcquireTimeout time.Duration

	// IdleTimeout is how long a connection may sit idle before the sweep
	// destroys it. Default: 5 minutes.
	IdleTimeout time.Duration

	// MaxLifetime is the maximum age of any connection, idle or in use.
	// Connections past it are destroyed on release or by the sweep.
	// Default: 30 minutes.
	MaxLifetime time.Duration

	// SweepInterval is how often the background sweep runs. Default: 1 minute.
	SweepInterval time.Duration

	// HealthCheckTimeout bounds the no-op round trip used by HealthCheck.
	// Default: 3 seconds.
	HealthCheckTimeout time.Duration

	// Logger is an optional structured logger. When nil the pool is silent.
	Logger Logger
}

// Logger is the logging interface the pool accepts. It matches the
// sqlbridge/logger package so a *logger.Logger can be passed directly.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Default values applied by withDefaults when a Config field is zero.
const (
	DefaultMaxSize            = 10
	DefaultAcquireTimeout     = 5 * time.Second
	DefaultIdleTimeout        = 5 * time.Minute
	DefaultMaxLifetime        = 30 * time.Minute
	DefaultSweepInterval      = time.Minute
	DefaultHealthCheckTimeout = 3 * time.Second
)

func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = DefaultAcquireTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.MaxLifetime <= 0 {
		c.MaxLifetime = DefaultMaxLifetime
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.HealthCheckTimeout <= 0 {
		c.HealthCheckTimeout = DefaultHealthCheckTimeout
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
	return c
}

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
