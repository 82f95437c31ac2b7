package sshlines

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log levels accepted by LogContext.Configure.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

func toZapLevel(level string) zapcore.Level {
	levels := map[string]zapcore.Level{
		LevelDebug: zapcore.DebugLevel,
		LevelInfo:  zapcore.InfoLevel,
		LevelWarn:  zapcore.WarnLevel,
		LevelError: zapcore.ErrorLevel,
	}
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zapcore.InfoLevel
}

// LogSink is where a LogContext writes. The first of Writer, Stdout or
// Filename that is set wins.
type LogSink struct {
	Writer     io.Writer
	Stdout     bool
	Filename   string
	MaxSize    int // megabytes
	MaxAge     int // days
	MaxBackups int
}

func (s LogSink) writeSyncer() (zapcore.WriteSyncer, error) {
	switch {
	case s.Writer != nil:
		return zapcore.AddSync(s.Writer), nil
	case s.Stdout:
		return zapcore.AddSync(os.Stdout), nil
	case s.Filename != "":
		err := os.MkdirAll(filepath.Dir(s.Filename), 0o750)
		if err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   s.Filename,
			MaxSize:    s.MaxSize,
			MaxAge:     s.MaxAge,
			MaxBackups: s.MaxBackups,
			LocalTime:  true,
		}), nil
	}
	return nil, fmt.Errorf("log sink has no destination")
}

// LogContext holds the loggers used for library diagnostics and host output.
// It discards everything until Configure is called.
type LogContext struct {
	mu       sync.RWMutex
	level    zap.AtomicLevel
	attached bool
	logger   *zap.SugaredLogger
	host     *zap.SugaredLogger
}

// NewLogContext returns a LogContext that discards everything.
func NewLogContext() *LogContext {
	nop := zap.NewNop().Sugar()
	return &LogContext{
		level:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
		logger: nop,
		host:   nop,
	}
}

// Configure attaches sink at level. Only the first call attaches a sink. Later
// calls change the level and log a warning instead of attaching another one.
func (lc *LogContext) Configure(sink LogSink, level string) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.level.SetLevel(toZapLevel(level))
	if lc.attached {
		lc.logger.Warn("logger already has a sink attached")
		return nil
	}
	w, err := sink.writeSyncer()
	if err != nil {
		return err
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Local().Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), w, lc.level)
	logger := zap.New(core).Named("sshlines")
	lc.logger = logger.Sugar()
	lc.host = logger.Named("host").Sugar()
	lc.attached = true
	return nil
}

// Level returns the current level name.
func (lc *LogContext) Level() string {
	return lc.level.Level().String()
}

func (lc *LogContext) debugf(template string, args ...interface{}) {
	lc.mu.RLock()
	logger := lc.logger
	lc.mu.RUnlock()
	logger.Debugf(template, args...)
}

// LogHostLine logs one line of host output at info level.
func (lc *LogContext) LogHostLine(host, prefix string, line []byte) {
	lc.mu.RLock()
	logger := lc.host
	lc.mu.RUnlock()
	logger.Infof("[%s]%s\t%s", host, prefix, line)
}

// Sync flushes buffered log entries.
func (lc *LogContext) Sync() error {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.logger.Sync()
}
