package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level uint8

// Same ordering as logrus: lower is more severe.
const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

var disabled bool

// Disable turns off every log, including warnings and errors.
func Disable() {
	disabled = true
}

// SetOutput configures the destination of all logs. Colors are only used when
// color is true, typically when w is a terminal.
func SetOutput(w io.Writer, color bool) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   color,
		DisableColors: !color,
	})
	logrus.SetLevel(logrus.DebugLevel)
}
