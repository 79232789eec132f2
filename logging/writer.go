package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var stderr io.Writer = os.Stderr

// newFileWriter returns the rotating writer for Director/picture.log.
func newFileWriter(config Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.Director, "picture.log"),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}
}

// writerRegistry tracks all created file writers for cleanup.
var (
	writerRegistry   []io.Closer
	writerRegistryMu sync.Mutex
)

func registerWriter(w *lumberjack.Logger) *lumberjack.Logger {
	writerRegistryMu.Lock()
	defer writerRegistryMu.Unlock()
	writerRegistry = append(writerRegistry, w)
	return w
}

// CloseAllWriters closes all registered file writers.
func CloseAllWriters() error {
	writerRegistryMu.Lock()
	defer writerRegistryMu.Unlock()

	var lastErr error
	for _, w := range writerRegistry {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	writerRegistry = nil
	return lastErr
}
