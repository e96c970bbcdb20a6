package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before New is called.
var Log = logrus.New()

// New configures Log for the given environment and returns it.
// Production logs are JSON at info level; everything else is text at debug.
func New(environment string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if environment == "production" {
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}

	Log = l
	return l
}

// Component returns an entry tagged with the component name
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
