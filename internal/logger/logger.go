package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level represents the logging level
type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	TRACE: "TRACE",
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l Level) String() string { return levelNames[l] }

func (l Level) logrus() logrus.Level {
	switch l {
	case TRACE:
		return logrus.TraceLevel
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLevel accepts logrus level names ("debug", "warning", ...).
func ParseLevel(s string) (Level, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return INFO, err
	}
	switch lvl {
	case logrus.TraceLevel:
		return TRACE, nil
	case logrus.DebugLevel:
		return DEBUG, nil
	case logrus.InfoLevel:
		return INFO, nil
	case logrus.WarnLevel:
		return WARN, nil
	default:
		return ERROR, nil
	}
}

// Component represents the logging component
type Component string

const (
	ComponentApp        Component = "app"
	ComponentServer     Component = "server"
	ComponentService    Component = "service"
	ComponentProvider   Component = "provider"
	ComponentStaging    Component = "staging"
	ComponentDownloader Component = "downloader"
	ComponentCipher     Component = "cipher"
	ComponentInnerTube  Component = "innertube"
	ComponentBotGuard   Component = "botguard"
)

// Format represents the log output format
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat maps "text" and "json" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown format: %s", s)
	}
}

// Config holds logger configuration
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	Components map[Component]bool
	Timestamp  bool
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  INFO,
		Format: FormatText,
		Output: os.Stderr,
		Components: map[Component]bool{
			ComponentApp:        true,
			ComponentServer:     true,
			ComponentService:    true,
			ComponentProvider:   true,
			ComponentStaging:    true,
			ComponentDownloader: false,
			ComponentCipher:     false,
			ComponentInnerTube:  false,
			ComponentBotGuard:   false,
		},
		Timestamp: true,
	}
}

// Logger provides structured logging functionality
type Logger struct {
	base       *logrus.Logger
	mu         sync.RWMutex
	components map[Component]bool
}

// New creates a new logger instance
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	base := logrus.New()
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	base.SetOutput(out)
	base.SetLevel(config.Level.logrus())
	switch config.Format {
	case FormatJSON:
		base.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: !config.Timestamp})
	default:
		base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !config.Timestamp, FullTimestamp: true})
	}
	components := make(map[Component]bool, len(config.Components))
	for c, on := range config.Components {
		components[c] = on
	}
	return &Logger{base: base, components: components}
}

// WithComponent creates a new logger instance for a specific component
func (l *Logger) WithComponent(component Component) *ComponentLogger {
	return &ComponentLogger{
		logger:    l,
		component: component,
	}
}

// SetLevel changes the logging level
func (l *Logger) SetLevel(level Level) {
	l.base.SetLevel(level.logrus())
}

// SetOutput changes the log output
func (l *Logger) SetOutput(w io.Writer) {
	l.base.SetOutput(w)
}

// EnableComponent enables logging for a specific component
func (l *Logger) EnableComponent(component Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components[component] = true
}

// DisableComponent disables logging for a specific component
func (l *Logger) DisableComponent(component Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.components[component] = false
}

func (l *Logger) enabled(component Component, level Level) bool {
	if level >= ERROR {
		return true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.components[component]
}

func (l *Logger) log(level Level, component Component, message string, fields map[string]interface{}) {
	if !l.enabled(component, level) {
		return
	}
	entry := l.base.WithField("component", string(component))
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields))
	}
	entry.Log(level.logrus(), message)
}

// ComponentLogger provides component-specific logging
type ComponentLogger struct {
	logger    *Logger
	component Component
}

// Trace logs a trace message
func (cl *ComponentLogger) Trace(message string, fields ...map[string]interface{}) {
	cl.log(TRACE, message, fields...)
}

// Debug logs a debug message
func (cl *ComponentLogger) Debug(message string, fields ...map[string]interface{}) {
	cl.log(DEBUG, message, fields...)
}

// Info logs an info message
func (cl *ComponentLogger) Info(message string, fields ...map[string]interface{}) {
	cl.log(INFO, message, fields...)
}

// Warn logs a warning message
func (cl *ComponentLogger) Warn(message string, fields ...map[string]interface{}) {
	cl.log(WARN, message, fields...)
}

// Error logs an error message
func (cl *ComponentLogger) Error(message string, fields ...map[string]interface{}) {
	cl.log(ERROR, message, fields...)
}

func (cl *ComponentLogger) log(level Level, message string, fields ...map[string]interface{}) {
	var merged map[string]interface{}
	switch len(fields) {
	case 0:
	case 1:
		merged = fields[0]
	default:
		merged = make(map[string]interface{})
		for _, f := range fields {
			for k, v := range f {
				merged[k] = v
			}
		}
	}
	// resolve the global logger lazily so SetGlobalLogger applies to
	// component loggers created at package init
	l := cl.logger
	if l == nil {
		l = GetGlobalLogger()
	}
	l.log(level, cl.component, message, merged)
}

var (
	globalMu     sync.RWMutex
	globalLogger = New(DefaultConfig())
)

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// WithComponent returns a component logger bound to whatever logger is
// global at the time of each call.
func WithComponent(component Component) *ComponentLogger {
	return &ComponentLogger{component: component}
}
