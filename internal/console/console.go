// Package console writes levelled, coloured status lines to the terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	infoTag    = color.New(color.FgBlue).SprintFunc()
	successTag = color.New(color.FgGreen).SprintFunc()
	warnTag    = color.New(color.Bold, color.FgYellow).SprintFunc()
	errorTag   = color.New(color.FgRed).SprintFunc()
	debugTag   = color.New(color.FgMagenta).SprintFunc()
)

// Logger prints tagged lines to a writer, normally stderr. It is safe for
// concurrent use.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	quiet   bool
	verbose bool
}

// Option is a functional option for configuring the Logger.
type Option func(*Logger)

// WithQuiet suppresses Info, Success and Debug lines.
func WithQuiet(quiet bool) Option {
	return func(l *Logger) {
		l.quiet = quiet
	}
}

// WithVerbose enables Debug lines.
func WithVerbose(verbose bool) Option {
	return func(l *Logger) {
		l.verbose = verbose
	}
}

// New creates a Logger writing to w.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{w: w}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Logger) printf(tag, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, tag+" "+format+"\n", args...)
}

// Info logs progress.
func (l *Logger) Info(format string, args ...any) {
	if l.quiet {
		return
	}
	l.printf(infoTag("[INFO]"), format, args...)
}

// Success logs a completed step.
func (l *Logger) Success(format string, args ...any) {
	if l.quiet {
		return
	}
	l.printf(successTag("[OK]"), format, args...)
}

// Warn logs a problem that does not stop the run.
func (l *Logger) Warn(format string, args ...any) {
	l.printf(warnTag("[WARN]"), format, args...)
}

// Error logs a failure. Errors are printed even when quiet.
func (l *Logger) Error(format string, args ...any) {
	l.printf(errorTag("[ERROR]"), format, args...)
}

// Debug logs details shown only in verbose mode.
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose || l.quiet {
		return
	}
	l.printf(debugTag("[DEBUG]"), format, args...)
}

// ErrorHandler adapts the logger to the policy's per-string error callback.
func (l *Logger) ErrorHandler() func(candidate string, err error) {
	return func(_ string, err error) {
		l.Error("Translate error: %v", err)
	}
}

// NewProgressBar returns a file counter drawn on w.
func NewProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]translating[reset]"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
