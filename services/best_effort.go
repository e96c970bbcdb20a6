package services

import (
	"github.com/sirupsen/logrus"
)

// BestEffort is the outcome of a side effect that must never fail the
// operation that triggered it. It is logged when produced; callers may
// inspect it or drop it, but never return it as an error.
type BestEffort struct {
	Operation string
	Err       error
}

// OK reports a successful side effect
func (b BestEffort) OK() bool {
	return b.Err == nil
}

// Log writes a warning for a failed side effect and nothing otherwise
func (b BestEffort) Log(entry *logrus.Entry) {
	if b.Err != nil {
		entry.WithError(b.Err).WithField("operation", b.Operation).Warn("best-effort side effect failed")
	}
}

func bestEffort(entry *logrus.Entry, operation string, err error) BestEffort {
	b := BestEffort{Operation: operation, Err: err}
	b.Log(entry)
	return b
}
