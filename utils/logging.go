package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/amirphl/morevans-pricing/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging points the standard logger at stderr, a rotating file or both. The returned
// function closes the file when one is in use.
func SetupLogging(cfg config.LoggingConfig) (func() error, error) {
	log.SetFlags(log.LstdFlags | log.LUTC | log.Lshortfile)
	if cfg.Output == "" || cfg.Output == "stderr" {
		log.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var out io.Writer = rotator
	if cfg.Output == "both" {
		out = io.MultiWriter(os.Stderr, rotator)
	}
	log.SetOutput(out)
	return rotator.Close, nil
}
