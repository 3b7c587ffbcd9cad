// Package logging configures the logrus logger shared by both binaries.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options controls logger construction.
type Options struct {
	Debug  bool
	JSON   bool
	Output io.Writer
}

// New builds a logger and installs it as the logrus standard logger so
// packages that log through the package-level functions share its settings.
func New(opts Options) *logrus.Logger {
	logger := logrus.StandardLogger()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
				logrus.FieldKeyMsg:  "msg",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}

	if opts.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}
