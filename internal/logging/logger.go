// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// SetupParams selects the level and format of the standard logger.
type SetupParams struct {
	Level  string
	Format string
	Output io.Writer
}

// Setup configures the logrus standard logger and returns it.
func Setup(params SetupParams) *logrus.Logger {
	logger := logrus.StandardLogger()
	Configure(logger, params)
	return logger
}

// Configure applies params to logger.
func Configure(logger *logrus.Logger, params SetupParams) {
	if strings.EqualFold(params.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.SetLevel(GetLevel(params.Level))

	if params.Output != nil {
		logger.SetOutput(params.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}
}

// GetLevel maps a level name to a logrus level. Unknown names fall back to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
