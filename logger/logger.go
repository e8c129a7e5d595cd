package logger

import (
	"github.com/readmegen/backend/config"
	"github.com/sirupsen/logrus"
)

// Setup will configure logrus from the LOGS config section
func Setup(cfg config.Config) {
	if cfg.Logs.OutputLogsAsJson {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	logrus.SetLevel(ParseLevel(cfg.Logs.Level))
}

// ParseLevel converts the configured level string to a logrus level,
// unknown values fall back to error
func ParseLevel(logLevel string) logrus.Level {
	level, err := logrus.ParseLevel(logLevel)

	if err != nil {
		return logrus.ErrorLevel
	}

	return level
}
