package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	levelDebugStringConstant              = "debug"
	levelInfoStringConstant               = "info"
	levelWarnStringConstant               = "warn"
	levelWarningStringConstant            = "warning"
	levelErrorStringConstant              = "error"
	levelFatalStringConstant              = "fatal"
	unsupportedLevelErrorTemplateConstant = "unsupported log level: %q"
)

// Level identifies a logging severity. Levels are totally ordered from LevelDebug to LevelFatal.
type Level int

// Supported severities.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug: levelDebugStringConstant,
	LevelInfo:  levelInfoStringConstant,
	LevelWarn:  levelWarnStringConstant,
	LevelError: levelErrorStringConstant,
	LevelFatal: levelFatalStringConstant,
}

var zapLevelMapping = map[Level]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
	LevelFatal: zapcore.FatalLevel,
}

// ParseLevel converts a textual level such as "debug" or "WARN" into a Level.
func ParseLevel(levelText string) (Level, error) {
	normalizedLevel := strings.ToLower(strings.TrimSpace(levelText))
	switch normalizedLevel {
	case levelDebugStringConstant:
		return LevelDebug, nil
	case levelInfoStringConstant:
		return LevelInfo, nil
	case levelWarnStringConstant, levelWarningStringConstant:
		return LevelWarn, nil
	case levelErrorStringConstant:
		return LevelError, nil
	case levelFatalStringConstant:
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf(unsupportedLevelErrorTemplateConstant, levelText)
	}
}

// String returns the lowercase name of the level.
func (level Level) String() string {
	if levelName, known := levelNames[level]; known {
		return levelName
	}
	return fmt.Sprintf("level(%d)", int(level))
}

func (level Level) zapLevel() zapcore.Level {
	if zapLevel, known := zapLevelMapping[level]; known {
		return zapLevel
	}
	if level < LevelDebug {
		return zapcore.DebugLevel
	}
	return zapcore.FatalLevel
}
