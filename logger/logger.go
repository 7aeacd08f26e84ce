// file: logger/logger.go

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. It is usable before Init is called so
// that package-level code and tests never hit a nil logger.
var Log = logrus.New()

// Init configures the shared logger for production use: JSON output to stdout
// so log aggregators can parse entries without extra tooling.
func Init() {
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.InfoLevel)
}
