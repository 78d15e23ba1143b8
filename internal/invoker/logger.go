package invoker

import "reflect"

// Logger receives progress messages from the builder and the invoker.
// logging.LeveledLogger satisfies it.
type Logger interface {
	Debug(message string, cause error)
	Info(message string, cause error)
	Warn(message string, cause error)
	Error(message string, cause error)
	FatalError(message string, cause error)
	IsDebugEnabled() bool
}

func isMissingLogger(logger Logger) bool {
	if logger == nil {
		return true
	}
	loggerValue := reflect.ValueOf(logger)
	switch loggerValue.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan:
		return loggerValue.IsNil()
	default:
		return false
	}
}
