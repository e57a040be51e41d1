package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// levelToLogrus maps this package's Level (shared across every Logger
// implementation) onto logrus's own Level type.
var levelToLogrus = map[Level]logrus.Level{
	DEBUG: logrus.DebugLevel,
	INFO:  logrus.InfoLevel,
	WARN:  logrus.WarnLevel,
	ERROR: logrus.ErrorLevel,
}

// LogrusLogger is a boot.Logger backed by logrus, used as the
// connection engine and bootstrap's default structured logger.
type LogrusLogger struct {
	entry *logrus.Entry
}

// Logrus builds a LogrusLogger writing JSON-free text output to
// stdout at the given level, tagging every line with prefix as a
// "component" field.
func Logrus(prefix string, level Level) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(levelToLogrus[level])
	return &LogrusLogger{entry: l.WithField("component", prefix)}
}

func (l *LogrusLogger) Debug(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Info(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warn(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Error(format string, args ...any) { l.entry.Errorf(format, args...) }
