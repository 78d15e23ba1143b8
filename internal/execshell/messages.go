package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	mavenStartTemplateConstant            = "Building %s in %s"
	mavenSuccessTemplateConstant          = "Build of %s in %s succeeded"
	mavenFailureTemplateConstant          = "Build of %s in %s failed with exit code %d%s"
	mavenExecutionFailureTemplateConstant = "Unable to build %s in %s: %s"
	mavenGoalsJoinSeparatorConstant       = ", "
	mavenDefaultGoalsLabelConstant        = "default goals"
	mavenLauncherBaseNameConstant         = "mvn"
	mavenWrapperBaseNameConstant          = "mvnw"
	mavenLongOptionPrefixConstant         = "--"
	mavenOptionPrefixConstant             = "-"
)

// Maven options whose value is the following argument.
var mavenValueOptions = map[string]struct{}{
	"-D": {}, "-P": {}, "-f": {}, "-pl": {}, "-rf": {}, "-b": {},
	"-s": {}, "-gs": {}, "-t": {}, "-T": {}, "-l": {}, "-el": {},
	"--define": {}, "--activate-profiles": {}, "--file": {}, "--projects": {},
	"--resume-from": {}, "--builder": {}, "--settings": {}, "--global-settings": {},
	"--toolchains": {}, "--threads": {}, "--log-file": {},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// IsMavenCommand reports whether command launches the Maven launcher or the Maven wrapper.
func (formatter CommandMessageFormatter) IsMavenCommand(command ShellCommand) bool {
	baseName := strings.ToLower(filepath.Base(strings.ReplaceAll(string(command.Name), `\`, "/")))
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return baseName == mavenLauncherBaseNameConstant || baseName == mavenWrapperBaseNameConstant
}

// DescribeMavenGoals lists the goals and phases in a Maven argument list, skipping options and their values.
func (formatter CommandMessageFormatter) DescribeMavenGoals(arguments []string) []string {
	goals := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := strings.TrimSpace(arguments[argumentIndex])
		if len(argument) == 0 {
			continue
		}
		if _, takesValue := mavenValueOptions[argument]; takesValue {
			argumentIndex++
			continue
		}
		if strings.HasPrefix(argument, mavenOptionPrefixConstant) || strings.HasPrefix(argument, mavenLongOptionPrefixConstant) {
			continue
		}
		goals = append(goals, argument)
	}
	return goals
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if formatter.IsMavenCommand(command) {
		return formatter.describeMavenMessage(command, result, failure, stage)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeMavenMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	goalsLabel := mavenDefaultGoalsLabelConstant
	if goals := formatter.DescribeMavenGoals(command.Details.Arguments); len(goals) > 0 {
		goalsLabel = strings.Join(goals, mavenGoalsJoinSeparatorConstant)
	}
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(mavenStartTemplateConstant, goalsLabel, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(mavenSuccessTemplateConstant, goalsLabel, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(mavenFailureTemplateConstant, goalsLabel, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(mavenExecutionFailureTemplateConstant, goalsLabel, workingDirectory, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
