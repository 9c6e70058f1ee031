package buffer

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	logger  atomic.Pointer[logrus.Logger]
	discard = newDiscardLogger()
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Logger returns the logger shared by the adapter packages. Output is
// discarded unless SetLogger installs a logger.
func Logger() *logrus.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return discard
}

// SetLogger configures the shared logger. Nil restores the silent default.
// Image releases may log from the runtime cleanup goroutine, so the logger
// is swapped atomically.
func SetLogger(l *logrus.Logger) {
	logger.Store(l)
}
