// Package logger wraps charmbracelet/log into the compositor's
// process-wide logging facility. Level is controlled by the LOG_LEVEL
// environment variable; STILCH_HELPER_PROCESS=1 suppresses all output,
// used by short-lived helper subprocesses (e.g. the privileged display
// probe spawned by the tty-udev backend) that must not pollute stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	Logger        *log.Logger
	currentWriter io.Writer = os.Stderr
)

func init() {
	Logger = log.New(os.Stderr)

	if os.Getenv("STILCH_HELPER_PROCESS") == "1" {
		Logger.SetLevel(log.FatalLevel + 1)
		return
	}

	SetLevel(os.Getenv("LOG_LEVEL"))
}

// Info logs at info level.
func Info(msg interface{}, keyvals ...interface{}) { Logger.Info(msg, keyvals...) }

// Debug logs at debug level.
func Debug(msg interface{}, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }

// Warn logs at warn level. Used for corerr.NotFound per spec §7.
func Warn(msg interface{}, keyvals ...interface{}) { Logger.Warn(msg, keyvals...) }

// Error logs at error level. Used for corerr.ProtocolViolation and
// corerr.BackendFailure per spec §7 — never fatal.
func Error(msg interface{}, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }

func Infof(format string, args ...interface{})  { Logger.Infof(format, args...) }
func Debugf(format string, args ...interface{}) { Logger.Debugf(format, args...) }
func Warnf(format string, args ...interface{})  { Logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Logger.Errorf(format, args...) }

// SetLevel sets the log level from a string; unrecognised or empty
// strings default to info.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		Logger.SetLevel(log.DebugLevel)
	case "WARN", "WARNING":
		Logger.SetLevel(log.WarnLevel)
	case "ERROR":
		Logger.SetLevel(log.ErrorLevel)
	case "FATAL":
		Logger.SetLevel(log.FatalLevel)
	default:
		Logger.SetLevel(log.InfoLevel)
	}
}

// SetOutput redirects logger output to w, preserving the current level.
func SetOutput(w io.Writer) {
	currentWriter = w
	level := Logger.GetLevel()
	Logger = log.NewWithOptions(w, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05"})
	Logger.SetLevel(level)
}

// SetupFileLogging redirects logging to
// $XDG_STATE_HOME/stilch/stilch.log (falling back to ~/.local/state),
// returning the opened file so callers can close it on shutdown.
func SetupFileLogging() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	logDir := filepath.Join(home, ".local", "state", "stilch")
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		logDir = filepath.Join(stateHome, "stilch")
	}
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logPath := filepath.Join(logDir, "stilch.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	if _, err := fmt.Fprintf(logFile, "\n%s: === new session ===\n", time.Now().Format("15:04:05")); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write to log file: %v\n", err)
	}

	level := Logger.GetLevel()
	currentWriter = logFile
	Logger = log.NewWithOptions(logFile, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05"})
	Logger.SetLevel(level)

	return logFile, nil
}

// Get returns the underlying charmbracelet/log logger.
func Get() *log.Logger { return Logger }
