// Package logging configures the process-wide logrus logger.
package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Init sets the standard logger up for env.  Development gets coloured
// text output; every other environment logs JSON lines.  An unknown level
// falls back to info.
func Init(env, level string) {
	logrus.SetOutput(os.Stdout)
	if env == "dev" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
