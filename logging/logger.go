// Package logging holds the process-wide logger for the e-voting service.
// Handlers and storage code log through Log with a component prefix
// ("VOTE:", "PERIOD:", "USER:", "AUTH:", "BALLOT:", "RESET:").
package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// BoostrapLogger must run before anything logs; main and the admin CLI call
// it first.
func BoostrapLogger() {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.DebugLevel)
	Log.SetReportCaller(true)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}
