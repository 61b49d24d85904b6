// Package logger hands out tagged log entries backed by one shared logrus
// instance, so every component reports under a recognizable module field.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var root = logrus.New()

// Configure applies the level from config once at startup. Subloggers
// handed out before the call pick the level up as well, since they all
// share the root instance.
func Configure(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	root.SetLevel(parsed)
	root.SetOutput(os.Stdout)
	root.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	return nil
}

// NewSublogger returns a logger tagged with the component name.
func NewSublogger(tag string) *logrus.Entry {
	return root.WithField("module", "pythsui."+tag)
}
