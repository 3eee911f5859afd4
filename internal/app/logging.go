package app

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// NewLogger настраивает корневой логгер по LogLevel и LogFormat.
func NewLogger(cfg Config, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	logger := log.New()
	logger.SetLevel(level)
	if out != nil {
		logger.SetOutput(out)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
