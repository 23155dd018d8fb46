package initializers

import (
	"os"
	"path/filepath"
)

// EnsureLogFileDefault creates the log directory and returns the path of the
// log file inside it.
func EnsureLogFileDefault() string {
	if err := os.MkdirAll(Cfg.LogFileDir, 0755); err != nil {
		panic("Failed to create log file directory: " + err.Error())
	}
	return filepath.Join(Cfg.LogFileDir, Cfg.LogFileDefault)
}

// LogFilePath is the path of the log file, empty when logging to stdout.
func LogFilePath() string {
	if Cfg.LogFileDir == "" {
		return ""
	}
	return filepath.Join(Cfg.LogFileDir, Cfg.LogFileDefault)
}
