// Package vfslog provides the structured logging facility shared by the
// vfs2dbd daemon and its internal packages. It supports output to stdout or
// systemd journald based on configuration.
package vfslog

import (
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
)

// Output defines the destination for log records.
type Output string

const (
	// OutputStdout sends logs to standard output.
	OutputStdout Output = "stdout"
	// OutputJournald sends logs to systemd journald via systemd-cat.
	OutputJournald Output = "journald"
	// OutputAuto selects journald when available, stdout otherwise.
	OutputAuto Output = "auto"
)

// Logger wraps the charm log.Logger with the selected output destination.
type Logger struct {
	*log.Logger
	output Output
}

// Config holds the logger construction parameters.
type Config struct {
	// Output selects where log records are written.
	Output Output
	// Level is the minimum level emitted (debug, info, warn, error).
	Level string
	// Prefix is prepended to every log line; vfs2dbd sets it to "vfs2dbd".
	Prefix string
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Output: OutputAuto,
		Level:  "info",
	}
}

func journaldAvailable() bool {
	if _, err := exec.LookPath("systemd-cat"); err != nil {
		return false
	}
	if _, err := os.Stat("/run/systemd/journal/socket"); err != nil {
		return false
	}
	return true
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New builds a Logger from cfg, falling back to stdout if journald was
// requested but is not reachable on this host.
func New(cfg Config) *Logger {
	var writer io.Writer
	var output Output

	switch cfg.Output {
	case OutputJournald, OutputAuto:
		if journaldAvailable() {
			writer = newJournaldWriter()
			output = OutputJournald
		} else {
			writer = os.Stdout
			output = OutputStdout
		}
	default:
		writer = os.Stdout
		output = OutputStdout
	}

	logger := log.NewWithOptions(writer, log.Options{
		Level:           parseLevel(cfg.Level),
		Prefix:          cfg.Prefix,
		ReportTimestamp: true,
		ReportCaller:    false,
	})

	return &Logger{Logger: logger, output: output}
}

// NewDefault builds a Logger using DefaultConfig.
func NewDefault() *Logger {
	return New(DefaultConfig())
}

// Output reports which destination the logger settled on.
func (l *Logger) Output() Output {
	return l.output
}

// journaldWriter relays writes to journald through systemd-cat.
type journaldWriter struct {
	identifier string
}

func newJournaldWriter() *journaldWriter {
	return &journaldWriter{identifier: "vfs2dbd"}
}

func (w *journaldWriter) Write(p []byte) (int, error) {
	cmd := exec.Command("systemd-cat", "-t", w.identifier)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return os.Stdout.Write(p)
	}
	if err := cmd.Start(); err != nil {
		return os.Stdout.Write(p)
	}

	n, err := stdin.Write(p)
	stdin.Close()
	_ = cmd.Wait()
	return n, err
}
