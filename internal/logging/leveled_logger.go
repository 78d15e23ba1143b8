package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	levelFieldNameConstant        = "level"
	messageFieldNameConstant      = "message"
	causeFieldNameConstant        = "cause"
	consoleSeparatorConstant      = " "
	levelLabelOpeningConstant     = "["
	levelLabelClosingConstant     = "]"
	defaultThresholdLevelConstant = LevelInfo
)

var zapLevelInverseMapping = map[zapcore.Level]Level{
	zapcore.DebugLevel: LevelDebug,
	zapcore.InfoLevel:  LevelInfo,
	zapcore.WarnLevel:  LevelWarn,
	zapcore.ErrorLevel: LevelError,
	zapcore.FatalLevel: LevelFatal,
}

// continueAfterFatalHook keeps the process alive after a fatal entry is written.
type continueAfterFatalHook struct{}

// OnWrite implements zapcore.CheckWriteHook without terminating the process.
func (continueAfterFatalHook) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

// LeveledLogger writes single-line messages at or above a mutable threshold.
type LeveledLogger struct {
	threshold zap.AtomicLevel
	logger    *zap.Logger
}

// NewStandardOutputLogger constructs a LeveledLogger writing to standard output with an info threshold.
func NewStandardOutputLogger() *LeveledLogger {
	return NewLeveledLogger(os.Stdout)
}

// NewLeveledLogger constructs a LeveledLogger writing to outputWriter with an info threshold.
func NewLeveledLogger(outputWriter io.Writer) *LeveledLogger {
	if outputWriter == nil {
		outputWriter = os.Stdout
	}

	threshold := zap.NewAtomicLevelAt(defaultThresholdLevelConstant.zapLevel())
	encoderConfiguration := zapcore.EncoderConfig{
		LevelKey:         levelFieldNameConstant,
		MessageKey:       messageFieldNameConstant,
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      bracketedLevelEncoder,
		ConsoleSeparator: consoleSeparatorConstant,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfiguration),
		zapcore.Lock(zapcore.AddSync(outputWriter)),
		threshold,
	)

	return &LeveledLogger{
		threshold: threshold,
		logger:    zap.New(core, zap.WithFatalHook(continueAfterFatalHook{})),
	}
}

// Debug logs message at the debug level.
func (leveledLogger *LeveledLogger) Debug(message string, cause error) {
	leveledLogger.log(LevelDebug, message, cause)
}

// Info logs message at the info level.
func (leveledLogger *LeveledLogger) Info(message string, cause error) {
	leveledLogger.log(LevelInfo, message, cause)
}

// Warn logs message at the warn level.
func (leveledLogger *LeveledLogger) Warn(message string, cause error) {
	leveledLogger.log(LevelWarn, message, cause)
}

// Error logs message at the error level.
func (leveledLogger *LeveledLogger) Error(message string, cause error) {
	leveledLogger.log(LevelError, message, cause)
}

// FatalError logs message at the fatal level. The process keeps running.
func (leveledLogger *LeveledLogger) FatalError(message string, cause error) {
	leveledLogger.log(LevelFatal, message, cause)
}

// IsDebugEnabled reports whether debug messages are written.
func (leveledLogger *LeveledLogger) IsDebugEnabled() bool {
	return leveledLogger.IsEnabled(LevelDebug)
}

// IsInfoEnabled reports whether info messages are written.
func (leveledLogger *LeveledLogger) IsInfoEnabled() bool {
	return leveledLogger.IsEnabled(LevelInfo)
}

// IsWarnEnabled reports whether warn messages are written.
func (leveledLogger *LeveledLogger) IsWarnEnabled() bool {
	return leveledLogger.IsEnabled(LevelWarn)
}

// IsErrorEnabled reports whether error messages are written.
func (leveledLogger *LeveledLogger) IsErrorEnabled() bool {
	return leveledLogger.IsEnabled(LevelError)
}

// IsFatalErrorEnabled reports whether fatal messages are written.
func (leveledLogger *LeveledLogger) IsFatalErrorEnabled() bool {
	return leveledLogger.IsEnabled(LevelFatal)
}

// IsEnabled reports whether messages at level reach the output.
func (leveledLogger *LeveledLogger) IsEnabled(level Level) bool {
	if leveledLogger == nil {
		return false
	}
	return leveledLogger.threshold.Enabled(level.zapLevel())
}

// SetThreshold changes the minimum level written by the logger.
func (leveledLogger *LeveledLogger) SetThreshold(level Level) {
	if leveledLogger == nil {
		return
	}
	leveledLogger.threshold.SetLevel(level.zapLevel())
}

// Threshold returns the minimum level currently written by the logger.
func (leveledLogger *LeveledLogger) Threshold() Level {
	if leveledLogger == nil {
		return defaultThresholdLevelConstant
	}
	if level, known := zapLevelInverseMapping[leveledLogger.threshold.Level()]; known {
		return level
	}
	return defaultThresholdLevelConstant
}

// Sync flushes buffered output.
func (leveledLogger *LeveledLogger) Sync() error {
	if leveledLogger == nil {
		return nil
	}
	return leveledLogger.logger.Sync()
}

func (leveledLogger *LeveledLogger) log(level Level, message string, cause error) {
	if leveledLogger == nil {
		return
	}

	checkedEntry := leveledLogger.logger.Check(level.zapLevel(), message)
	if checkedEntry == nil {
		return
	}

	if cause == nil {
		checkedEntry.Write()
		return
	}
	checkedEntry.Write(zap.NamedError(causeFieldNameConstant, cause))
}

func bracketedLevelEncoder(level zapcore.Level, arrayEncoder zapcore.PrimitiveArrayEncoder) {
	arrayEncoder.AppendString(levelLabelOpeningConstant + level.CapitalString() + levelLabelClosingConstant)
}
