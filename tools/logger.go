package tools

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joe-ervin05/tablestore/config"
)

var level = new(slog.LevelVar)

// Logger is the global structured logger instance.
var Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: level,
}))

func init() {
	SetLevel(config.Cfg.LogLevel)
	slog.SetDefault(Logger)
}

// SetLevel changes the minimum level of Logger. Unknown names select info.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}
