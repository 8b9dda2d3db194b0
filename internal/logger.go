package internal

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// InitLogger initializes the logger with optional file output and level.
// Logs always go to stderr (or the logfile) so they never mix with report lines on stdout.
func InitLogger(logfile, level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   logfile == "" && isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp: true,
		DisableQuote:  true,
		PadLevelText:  true,
	})
	logrus.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logrus.Warnf("Unknown log level %q, using info", level)
	}
	logrus.SetLevel(lvl)

	if logfile != "" {
		file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logrus.SetOutput(file)
		} else {
			logrus.Warn("Failed to open log file, logging to stderr")
		}
	}
}

// diag is the diagnostic channel of a scan. With show enabled messages are promoted
// to the given level, otherwise they are kept at debug.
type diag struct {
	show bool
}

func (d diag) log(level logrus.Level, file string, msg string) {
	if !d.show {
		level = logrus.DebugLevel
	}
	logrus.WithField("file", file).Log(level, msg)
}

func (d diag) info(file, msg string) { d.log(logrus.InfoLevel, file, msg) }
func (d diag) warn(file, msg string) { d.log(logrus.WarnLevel, file, msg) }

func (d diag) err(file string, err error, msg string) {
	level := logrus.ErrorLevel
	if !d.show {
		level = logrus.DebugLevel
	}
	logrus.WithFields(logrus.Fields{"file": file, "err": err}).Log(level, msg)
}
