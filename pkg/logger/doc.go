// Package logger provides a structured logging interface for the service.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output
// - Optional file output alongside the console
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "tokpulse/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/tokpulse.log",
//	}
//	err := logger.Initialize(cfg)
//
//	log := logger.GetLogger()
//	log.InfoWithFields("analysis started", map[string]interface{}{
//	    "username": username,
//	})
//
// A capturing TestLogger is provided for assertions in tests.
package logger
