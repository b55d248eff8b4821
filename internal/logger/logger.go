package logger

import (
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

const header = `{"time":"${time_rfc3339}","level":"${level}","component":"${prefix}","file":"${short_file}","line":"${line}"}`

var (
	mu      sync.Mutex
	level   = log.INFO
	loggers = map[string]*log.Logger{}
)

// SetLevel changes the level of every component logger, current and future.
func SetLevel(name string) {
	mu.Lock()
	defer mu.Unlock()

	level = parseLevel(name)
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

// For returns the logger for a component, creating it on first use.
func For(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[component]; ok {
		return l
	}
	l := log.New(component)
	l.SetHeader(header)
	l.SetLevel(level)
	loggers[component] = l
	return l
}

// HTTP returns a logger for server lifecycle and request handling.
func HTTP() *log.Logger { return For("http") }

// Auth returns a logger for authentication.
func Auth() *log.Logger { return For("auth") }

// RateLimit returns a logger for rate limiting.
func RateLimit() *log.Logger { return For("ratelimit") }

// DB returns a logger for database operations.
func DB() *log.Logger { return For("db") }

// Tasks returns a logger for task operations.
func Tasks() *log.Logger { return For("tasks") }

func parseLevel(name string) log.Lvl {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
