package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the log level
type Level int

const (
	LevelDebug Level = iota // Model and payload detail (only shown with --verbose)
	LevelInfo               // Invocation milestones
	LevelTool               // Tool dispatch and results
	LevelWarn               // Recoverable problems such as unknown tools
	LevelError              // Failures that end an invocation
)

// ParseLevel maps a config value to a Level. Unknown names fall back to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "tool":
		return LevelTool
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// ANSI color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// Logger writes levelled, optionally coloured lines. Loggers derived with
// WithRunID share the parent's writer and lock, so concurrent invocations
// never interleave within a line.
type Logger struct {
	out       *sink
	level     Level
	showTime  bool
	colorMode bool
	runID     string
}

func NewLogger(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		out:       &sink{w: w},
		level:     level,
		showTime:  true,
		colorMode: true,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLogger(io.Discard, LevelError+1)
}

func (l *Logger) SetColorMode(enabled bool) {
	l.colorMode = enabled
}

func (l *Logger) SetShowTime(enabled bool) {
	l.showTime = enabled
}

func (l *Logger) Level() Level {
	return l.level
}

// WithRunID returns a logger that tags every line with an invocation ID.
func (l *Logger) WithRunID(id string) *Logger {
	clone := *l
	clone.runID = id
	return &clone
}

func (l *Logger) Debug(format string, args ...any) {
	if l.level <= LevelDebug {
		l.log(ColorGray, "DEBUG", format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.level <= LevelInfo {
		l.log(ColorBlue, "INFO", format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l.level <= LevelWarn {
		l.log(ColorYellow, "WARN", format, args...)
	}
}

func (l *Logger) Error(format string, args ...any) {
	if l.level <= LevelError {
		l.log(ColorRed, "ERROR", format, args...)
	}
}

// ToolCall logs a dispatched tool call with its effective parameters.
func (l *Logger) ToolCall(turn int, toolName string, params string) {
	if l.level <= LevelTool {
		l.log(ColorCyan, "TOOL", "round %d: %s %s", turn, toolName, formatJSON(params))
	}
}

// ToolResult logs the status of a finished tool call.
func (l *Logger) ToolResult(toolName string, status string, duration time.Duration) {
	if l.level <= LevelTool {
		color := ColorGreen
		if status != "success" {
			color = ColorRed
		}
		l.log(color, "TOOL", "%s -> %s (%s)", toolName, status, duration.Round(time.Millisecond))
	}
}

// SessionStart logs the beginning of an invocation.
func (l *Logger) SessionStart(request string) {
	if l.level <= LevelInfo {
		l.log(ColorBold+ColorCyan, "START", "%s", truncate(request, 120))
	}
}

// SessionEnd logs the completion of an invocation with statistics.
func (l *Logger) SessionEnd(duration time.Duration, rounds, toolCalls int, truncated bool) {
	if l.level <= LevelInfo {
		l.log(ColorBold+ColorGreen, "END", "duration=%s rounds=%d tool_calls=%d truncated=%t",
			duration.Round(time.Millisecond), rounds, toolCalls, truncated)
	}
}

func (l *Logger) log(color, level, format string, args ...any) {
	var b strings.Builder
	if l.colorMode {
		b.WriteString(color)
	}
	if l.showTime {
		b.WriteString(time.Now().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString("[")
	b.WriteString(level)
	b.WriteString("]")
	if l.colorMode {
		b.WriteString(ColorReset)
	}
	if l.runID != "" {
		b.WriteString(" run=")
		b.WriteString(l.runID)
	}
	b.WriteByte(' ')
	b.WriteString(fmt.Sprintf(format, args...))
	b.WriteByte('\n')

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	_, _ = io.WriteString(l.out.w, b.String())
}

// formatJSON compacts a JSON document onto one line; anything else is
// returned trimmed.
func formatJSON(s string) string {
	s = strings.TrimSpace(s)
	var obj any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	compact, err := json.Marshal(obj)
	if err != nil {
		return s
	}
	return string(compact)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
