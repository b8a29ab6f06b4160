package linter

import (
	"github.com/sirupsen/logrus"
)

// Level is a log level for the Channel interface.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Channel receives diagnostic output from the lint/fix pipeline.
// Implementations map to environment-specific UX, such as CLI stderr.
type Channel interface {
	Log(level Level, msg string)
	Progress(title string, pct int) // -1 = indeterminate
	Warn(msg string)
}

// LogChannel is a Channel backed by a logrus logger.
type LogChannel struct {
	Logger logrus.FieldLogger
}

// NewLogChannel returns a channel writing to logger, or to the standard
// logrus logger when logger is nil.
func NewLogChannel(logger logrus.FieldLogger) *LogChannel {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogChannel{Logger: logger}
}

// Log implements Channel.
func (c *LogChannel) Log(level Level, msg string) {
	switch level {
	case LevelDebug:
		c.Logger.Debug(msg)
	case LevelInfo:
		c.Logger.Info(msg)
	case LevelWarn:
		c.Logger.Warn(msg)
	default:
		c.Logger.Error(msg)
	}
}

// Progress implements Channel. Progress is only interesting when debugging.
func (c *LogChannel) Progress(title string, pct int) {
	c.Logger.WithField("progress", pct).Debug(title)
}

// Warn implements Channel.
func (c *LogChannel) Warn(msg string) {
	c.Logger.Warn(msg)
}

type nopChannel struct{}

func (nopChannel) Log(Level, string) {}

func (nopChannel) Progress(string, int) {}

func (nopChannel) Warn(string) {}

func channelOrNop(ch Channel) Channel {
	if ch == nil {
		return nopChannel{}
	}
	return ch
}
