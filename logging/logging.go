// Package logging tags slog records with the subsystem that emitted them.
package logging

import "io"
import "log/slog"
import "strings"

import "github.com/pkg/errors"

type SubSystem uint8

const (
	System SubSystem = iota
	Training
	Scheduler
	Data
	Quantization
	Device
	Progress
	Config
)

var subSystemNames = [...]string{
	System:       "system",
	Training:     "training",
	Scheduler:    "scheduler",
	Data:         "data",
	Quantization: "quantization",
	Device:       "device",
	Progress:     "progress",
	Config:       "config",
}

func (s SubSystem) String() string {
	if int(s) < len(subSystemNames) {
		return subSystemNames[s]
	}
	return "unknown"
}

// LevelOff disables logging in Setup.
const LevelOff = "off"

// Setup installs the default logger. Format is "json" or "text"; level is a
// slog level name or LevelOff.
func Setup(w io.Writer, level, format string) error {
	if strings.EqualFold(level, LevelOff) {
		setNoopLogger()
		return nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return errors.Wrapf(err, "log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: l}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "json", "":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return errors.Errorf("log format %q", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func setNoopLogger() {
	// above every level in use
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(100),
	})))
}

// WithNoopLogger runs action with logging off and restores the previous
// default logger afterwards, including one installed by action.
func WithNoopLogger(action func() error) error {
	current := slog.Default()
	defer slog.SetDefault(current)

	setNoopLogger()
	return action()
}

func Warn(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem.String()}, keyvals...)
	slog.Warn(msg, withSubsystem...)
}

func Info(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem.String()}, keyvals...)
	slog.Info(msg, withSubsystem...)
}
func Error(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem.String()}, keyvals...)
	slog.Error(msg, withSubsystem...)
}
func Debug(msg string, subSystem SubSystem, keyvals ...interface{}) {
	withSubsystem := append([]interface{}{"subsystem", subSystem.String()}, keyvals...)
	slog.Debug(msg, withSubsystem...)
}
