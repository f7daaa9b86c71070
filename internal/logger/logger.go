package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ABEL-1010/Inventory-Management-System/internal/config"

	log "github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger and returns a closer for the log
// file, if one was opened. Output goes to stdout and to the file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	switch cfg.Format {
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&log.JSONFormatter{})
	}

	level := log.InfoLevel
	if cfg.Level != "" {
		lvl, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = lvl
	}
	log.SetLevel(level)

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}

	if dir := filepath.Dir(cfg.File); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
