package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// InitLogger sets up the shared JSON logger on stdout.
func InitLogger(level string) *logrus.Logger {
	Log = NewLogger(os.Stdout, level)
	return Log
}

// NewLogger builds a JSON logger. An unknown level falls back to info.
func NewLogger(out io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
