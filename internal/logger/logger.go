package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/auto-dns/aliyun-ddns-sync/internal/config"
	"github.com/rs/zerolog"
)

// SetupLogger builds the run logger: human-readable console output on
// stdout plus an append-only log file when one is configured. If the
// file cannot be opened the logger falls back to stdout only.
func SetupLogger(cfg *config.LoggingConfig) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	levelStr := strings.ToLower(cfg.Level)
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = consoleWriter
	if cfg.File != "" {
		// The file is held open for the life of the process, which is a
		// single reconciliation cycle.
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", cfg.File, err)
		} else {
			fileWriter := zerolog.ConsoleWriter{
				Out:        f,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			}
			out = zerolog.MultiLevelWriter(consoleWriter, fileWriter)
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	logger := zerolog.New(out).
		With().
		Timestamp().
		Str("service", "aliyun_ddns_sync").
		Str("host", hostname).
		Logger()

	return logger
}
