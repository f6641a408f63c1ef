package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rpupo63/blog-backend/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "blog-backend"

// New creates the process wide zerolog logger. Development gets a console
// writer, everything else gets JSON. When LOG_FILE is set the output is also
// written to a rotating file.
func New(c map[string]string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	development := config.GetString(c, "ENV", "") == "development"
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	if path := config.GetString(c, "LOG_FILE", ""); path != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    config.GetInt(c, "LOG_MAX_SIZE_MB", 100),
			MaxBackups: config.GetInt(c, "LOG_MAX_BACKUPS", 5),
			MaxAge:     config.GetInt(c, "LOG_MAX_AGE_DAYS", 30),
			Compress:   true,
		})
	}

	ctx := zerolog.New(out).
		Level(ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))).
		With().
		Timestamp().
		Str("service", serviceName)
	if development {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
