package invoker

import (
	"context"
	"errors"

	"github.com/temirov/mvninvoker/internal/execshell"
)

const (
	unavailableExitCodeConstant = -1
)

// CommandExecutor runs a resolved command. execshell.ShellExecutor satisfies it.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// InvocationResult describes the outcome of a launched build.
type InvocationResult struct {
	Invocation Invocation
	// ExitCode is the process exit code, or -1 when the process could not be launched or was interrupted.
	ExitCode int
	// ExecutionError is set when the process could not be launched or was interrupted.
	ExecutionError error
}

// Succeeded reports whether the build ran and exited with code zero.
func (result InvocationResult) Succeeded() bool {
	return result.ExecutionError == nil && result.ExitCode == 0
}

// Invoker builds command lines and runs them.
type Invoker struct {
	builder  *CommandLineBuilder
	executor CommandExecutor
}

// NewInvoker constructs an Invoker around a builder and an executor.
func NewInvoker(builder *CommandLineBuilder, executor CommandExecutor) *Invoker {
	return &Invoker{builder: builder, executor: executor}
}

// Execute builds the invocation for request and runs it. Build errors are returned before any process starts;
// a build that runs and fails is reported through the result.
func (invoker *Invoker) Execute(executionContext context.Context, request InvocationRequest) (InvocationResult, error) {
	if invoker.builder == nil {
		return InvocationResult{}, IllegalStateError{Cause: ErrBuilderNotConfigured}
	}
	if invoker.executor == nil {
		return InvocationResult{}, IllegalStateError{Cause: ErrExecutorNotConfigured}
	}

	invocation, buildError := invoker.builder.Build(request)
	if buildError != nil {
		return InvocationResult{}, buildError
	}

	if request.Timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, request.Timeout)
		defer cancel()
	}

	command := invoker.shellCommand(request, invocation)
	executionResult, executionError := invoker.executor.Execute(executionContext, command)
	if executionError == nil {
		return InvocationResult{Invocation: invocation, ExitCode: executionResult.ExitCode}, nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		return InvocationResult{Invocation: invocation, ExitCode: commandFailure.Result.ExitCode}, nil
	}
	return InvocationResult{Invocation: invocation, ExitCode: unavailableExitCodeConstant, ExecutionError: executionError}, nil
}

func (invoker *Invoker) shellCommand(request InvocationRequest, invocation Invocation) execshell.ShellCommand {
	logger := invoker.builder.Logger()

	standardOutputHandler := request.OutputHandler
	if standardOutputHandler == nil {
		standardOutputHandler = func(line string) { logger.Info(line, nil) }
	}
	standardErrorHandler := request.ErrorHandler
	if standardErrorHandler == nil {
		standardErrorHandler = func(line string) { logger.Error(line, nil) }
	}

	return execshell.ShellCommand{
		Name: execshell.CommandName(invocation.Executable),
		Details: execshell.CommandDetails{
			Arguments:             append([]string{}, invocation.Arguments...),
			WorkingDirectory:      invocation.WorkingDirectory,
			EnvironmentVariables:  invocation.Environment,
			IsolatedEnvironment:   !request.InheritsShellEnvironment(),
			StandardInput:         request.InputStream,
			StandardOutputHandler: execshell.LineHandler(standardOutputHandler),
			StandardErrorHandler:  execshell.LineHandler(standardErrorHandler),
		},
	}
}
