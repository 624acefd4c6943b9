package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is usable as soon as the package loads; InitLogger reconfigures
// output, format and rotation from config.
var Log = logrus.New()

// InitLogger configures the global logger. When logFile is non-empty the
// output is additionally written to a size-rotated file.
func InitLogger(logFile string) {
	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout
	if logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		}
		Log.Out = io.MultiWriter(os.Stdout, rotated)
	}

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	// Log level can be changed depending on environment
	Log.SetLevel(logrus.InfoLevel)
}
