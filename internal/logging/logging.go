// Package logging builds the CLI's logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// Config selects the logger's level, format and destination. With an empty
// File the logger writes to Stderr.
type Config struct {
	Level        string
	Format       string
	File         string
	RotationTime time.Duration
	MaxAgeDays   int
	ReportCaller bool

	// Stderr overrides os.Stderr, for tests.
	Stderr io.Writer
}

// DefaultConfig logs text at info level to stderr, rotating daily and
// keeping a week when a file is set.
func DefaultConfig() Config {
	return Config{
		Level:        "info",
		Format:       "text",
		RotationTime: 24 * time.Hour,
		MaxAgeDays:   7,
	}
}

// NewLogger builds a logger from c. An unparsable level is an error.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var out io.Writer = os.Stderr
	if c.Stderr != nil {
		out = c.Stderr
	}
	if c.File != "" {
		rotation := c.RotationTime
		if rotation <= 0 {
			rotation = 24 * time.Hour
		}
		w, err := rotatelogs.New(
			c.File+".%Y%m%d",
			rotatelogs.WithLinkName(c.File),
			rotatelogs.WithRotationTime(rotation),
			rotatelogs.WithMaxAge(time.Duration(c.MaxAgeDays)*24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("log file %s: %w", c.File, err)
		}
		out = w
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetReportCaller(c.ReportCaller)

	switch strings.ToLower(c.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("log format %q: want text or json", c.Format)
	}
	return logger, nil
}
