package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the package-level logrus logger
func SetupLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stdout)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.999Z07:00"})
		return nil
	}

	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)
	return nil
}

// LogError writes a structured error line tagged with where it happened
func LogError(logger log.FieldLogger, module, funcName, context string, data any, err error) {
	fields := log.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).WithError(err).Error(context)
}
