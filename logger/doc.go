// Package logger provides structured logging for sqlbridge.
//
// It wraps Uber's Zap logger behind a small surface shared by every sqlbridge
// package: each level method takes a message, an optional error and optional
// field maps. The pool and statement packages accept this logger through
// their configs.
//
// Basic usage:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "debug"})
//	log.Info("pool created", nil, map[string]interface{}{
//	    "engine":   "postgres",
//	    "max_size": 10,
//	})
//
// All methods are safe for concurrent use.
package logger
