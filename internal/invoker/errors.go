package invoker

import (
	"errors"
	"fmt"
	"strings"
)

const (
	configurationErrorMessageConstant             = "invalid invocation configuration"
	illegalStateErrorMessageConstant              = "invoker is not ready"
	loggerNotConfiguredMessageConstant            = "logger not configured"
	localRepositoryIsFileMessageConstant          = "local repository must be a directory, not a file"
	executableNotFoundMessageConstant             = "maven executable not found"
	builderNotConfiguredMessageConstant           = "command line builder not configured"
	executorNotConfiguredMessageConstant          = "command executor not configured"
	configurationErrorTemplateConstant            = "%s: %s %q: %v"
	configurationErrorWithoutPathTemplateConstant = "%s: %s: %v"
	illegalStateErrorTemplateConstant             = "%s: %v"
)

var (
	// ErrConfiguration matches every ConfigurationError through errors.Is.
	ErrConfiguration = errors.New(configurationErrorMessageConstant)
	// ErrIllegalState matches every IllegalStateError through errors.Is.
	ErrIllegalState = errors.New(illegalStateErrorMessageConstant)
	// ErrLoggerNotConfigured indicates that the builder has no logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrLocalRepositoryIsFile indicates that the local repository path denotes a regular file.
	ErrLocalRepositoryIsFile = errors.New(localRepositoryIsFileMessageConstant)
	// ErrExecutableNotFound indicates that no launcher could be located.
	ErrExecutableNotFound = errors.New(executableNotFoundMessageConstant)
	// ErrBuilderNotConfigured indicates that an Invoker has no CommandLineBuilder.
	ErrBuilderNotConfigured = errors.New(builderNotConfiguredMessageConstant)
	// ErrExecutorNotConfigured indicates that an Invoker has no CommandExecutor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// ConfigurationError reports a request or builder setting that cannot produce a command line.
type ConfigurationError struct {
	Setting string
	Path    string
	Cause   error
}

// Error describes the offending setting.
func (configurationError ConfigurationError) Error() string {
	if len(strings.TrimSpace(configurationError.Path)) == 0 {
		return fmt.Sprintf(configurationErrorWithoutPathTemplateConstant, configurationErrorMessageConstant, configurationError.Setting, configurationError.Cause)
	}
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationErrorMessageConstant, configurationError.Setting, configurationError.Path, configurationError.Cause)
}

// Unwrap exposes ErrConfiguration and the underlying cause.
func (configurationError ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, configurationError.Cause}
}

// IllegalStateError reports a builder whose required collaborators are missing.
type IllegalStateError struct {
	Cause error
}

// Error describes the missing collaborator.
func (illegalStateError IllegalStateError) Error() string {
	return fmt.Sprintf(illegalStateErrorTemplateConstant, illegalStateErrorMessageConstant, illegalStateError.Cause)
}

// Unwrap exposes ErrIllegalState and the underlying cause.
func (illegalStateError IllegalStateError) Unwrap() []error {
	return []error{ErrIllegalState, illegalStateError.Cause}
}
