package logger_test

import (
	"errors"
	"os"

	"github.com/wonny/lighthorse/backend/pkg/config"
	"github.com/wonny/lighthorse/backend/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Dashboard started")
	log.Warnf("Upstream slow: %s", "/rs-etf/mansfield")
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).WithComponent("dashboard")

	log.WithFields(map[string]interface{}{
		"view":     "etf-mansfield",
		"rows":     20,
		"warnings": 1,
	}).Info("View loaded")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	// CLI 는 stdout 을 표 출력에 쓰므로 로그는 stderr 로
	log := logger.NewWithWriter(cfg, os.Stderr)

	err := errors.New("upstream /rs-stock/momentum: unexpected status code: 502")
	log.WithError(err).
		WithField("view", "stock-momentum").
		Error("Failed to load view")
}
