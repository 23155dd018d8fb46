package initializers

import (
	"io"
	"log/slog"
	"os"
)

var LOGGER *slog.Logger

func InitLogger() {
	var out io.Writer = os.Stdout
	if Cfg.LogFileDir != "" {
		// Open the log file or create it if it doesn't exist
		logFile, err := os.OpenFile(EnsureLogFileDefault(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			panic("Failed to open log file: " + err.Error())
		}
		out = logFile
	}

	// Create a slog handler
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	// Create a logger with the handler
	LOGGER = slog.New(handler)

	// Set the logger as the default logger
	slog.SetDefault(LOGGER)
}
