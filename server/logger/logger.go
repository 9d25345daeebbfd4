package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/derktes/rc5-remote/server/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeFormat is used by both formatters.
const TimeFormat = "2006-01-02 15:04:05.000"

// New builds a logger from cfg. With a file path the output rotates through
// lumberjack and is mirrored to stdout when EnableConsole is set.
func New(cfg config.LoggerConfig) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s, %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: TimeFormat})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: TimeFormat,
			FullTimestamp:   true,
		})
	}

	var writers []io.Writer
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		})
	}
	if cfg.EnableConsole || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	log.SetOutput(io.MultiWriter(writers...))

	log.WithFields(logrus.Fields{
		"level":  cfg.Level,
		"format": cfg.Format,
		"file":   cfg.FilePath,
	}).Debug("Logger initialised")
	return log, nil
}
