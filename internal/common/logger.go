package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the process-wide logger, creating a console-only one
// when InitLogger has not run yet (tests, early startup).
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	// Double-check after acquiring write lock
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(consoleWriterConfig())
	}
	return globalLogger
}

// InitLogger configures the global logger from the logging section of the
// config and returns it.
func InitLogger(config *Config) arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	logger := arbor.NewLogger()

	for _, output := range config.Logging.Output {
		switch output {
		case "file":
			if fw, ok := fileWriterConfig(); ok {
				logger = logger.WithFileWriter(fw)
			}
		case "stdout", "console":
			logger = logger.WithConsoleWriter(consoleWriterConfig())
		}
	}

	logger = logger.WithLevelFromString(config.Logging.Level)

	globalLogger = logger
	return logger
}

func consoleWriterConfig() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}
}

// fileWriterConfig places the log next to the binary under logs/.
func fileWriterConfig() (models.WriterConfiguration, bool) {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Printf("Warning: Failed to get executable path: %v\n", err)
		return models.WriterConfiguration{}, false
	}

	logsDir := filepath.Join(filepath.Dir(execPath), "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Printf("Warning: Failed to create logs directory: %v\n", err)
		return models.WriterConfiguration{}, false
	}

	return models.WriterConfiguration{
		Type:             models.LogWriterTypeFile,
		FileName:         filepath.Join(logsDir, "scholar.log"),
		TimeFormat:       "15:04:05",
		MaxSize:          100 * 1024 * 1024, // 100 MB
		MaxBackups:       3,
		DisableTimestamp: false,
	}, true
}
