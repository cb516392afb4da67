package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/natefinch/lumberjack.v2"
)

// fileSink is shared by a FileLogger and every logger derived from it
type fileSink struct {
	mu     sync.Mutex
	out    *lumberjack.Logger
	closed bool
}

// FileLogger writes JSON lines to a size-rotated file
type FileLogger struct {
	sink     *fileSink
	filePath string
	level    LogLevel
	traceID  string
}

// FileLoggerConfig contains configuration for file logger
type FileLoggerConfig struct {
	FilePath      string
	Level         LogLevel
	MaxFileSize   int64 // in bytes, 0 means no rotation
	MaxBackups    int
	RotateEnabled bool
}

const bytesPerMegabyte = 1024 * 1024

// NewFileLogger creates the log directory and file and returns a logger
// appending to it.
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// lumberjack opens lazily; create the file now so open errors surface here
	f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close log file: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxBackups: config.MaxBackups,
		LocalTime:  false,
	}
	if config.RotateEnabled && config.MaxFileSize > 0 {
		megabytes := int(config.MaxFileSize / bytesPerMegabyte)
		if megabytes < 1 {
			megabytes = 1
		}
		out.MaxSize = megabytes
	} else {
		// effectively unbounded
		out.MaxSize = 1 << 20
	}

	return &FileLogger{
		sink:     &fileSink{out: out},
		filePath: config.FilePath,
		level:    config.Level,
	}, nil
}

func (l *FileLogger) log(level LogLevel, msg string, fields ...Field) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if level < l.level || l.sink.closed {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   msg,
		TraceID:   l.traceID,
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, field := range fields {
			if err, ok := field.Value.(error); ok {
				entry.Fields[field.Key] = err.Error()
				continue
			}
			entry.Fields[field.Key] = field.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal log entry: %v\n", err)
		return
	}
	data = append(data, '\n')

	if _, err := l.sink.out.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log entry: %v\n", err)
	}
}

// Rotate forces the current file to be rotated
func (l *FileLogger) Rotate() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.out.Rotate()
}

// Path returns the active log file path
func (l *FileLogger) Path() string {
	return l.filePath
}

func (l *FileLogger) Debug(msg string, fields ...Field) { l.log(DEBUG, msg, fields...) }

func (l *FileLogger) Info(msg string, fields ...Field) { l.log(INFO, msg, fields...) }

func (l *FileLogger) Warn(msg string, fields ...Field) { l.log(WARN, msg, fields...) }

func (l *FileLogger) Error(msg string, fields ...Field) { l.log(ERROR, msg, fields...) }

func (l *FileLogger) WithTraceID(traceID string) Logger {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return &FileLogger{
		sink:     l.sink,
		filePath: l.filePath,
		level:    l.level,
		traceID:  traceID,
	}
}

func (l *FileLogger) WithContext(ctx context.Context) Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		return l
	}
	return l.WithTraceID(traceID)
}

// SetLevel changes the level of this logger only; derived loggers keep theirs
func (l *FileLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.level = level
}

// Close closes the shared file. Derived loggers stop writing afterwards.
func (l *FileLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.closed {
		return nil
	}
	l.sink.closed = true
	return l.sink.out.Close()
}
