package ui

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/mvninvoker/internal/execshell"
)

const (
	durationSuffixTemplateConstant = " (%s)"
	durationRoundingUnitConstant   = 10 * time.Millisecond
	emptyStringConstant            = ""
)

// CommandEventFormatter builds console messages for command lifecycle events, adding the elapsed build time
// to completion messages.
type CommandEventFormatter struct {
	messageFormatter execshell.CommandMessageFormatter
}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return formatter.messageFormatter.BuildStartedMessage(command)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	return formatter.messageFormatter.BuildSuccessMessage(command) + formatter.formatDurationSuffix(result.Duration)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	return formatter.messageFormatter.BuildFailureMessage(command, result) + formatter.formatDurationSuffix(result.Duration)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	return formatter.messageFormatter.BuildExecutionFailureMessage(command, failure)
}

func (formatter CommandEventFormatter) formatDurationSuffix(duration time.Duration) string {
	if duration <= 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(durationSuffixTemplateConstant, duration.Round(durationRoundingUnitConstant))
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver by logging command completion notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command, result))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver by logging unexpected execution failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
