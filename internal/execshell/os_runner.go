package execshell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	carriageReturnSuffixConstant           = "\r"
	initialLineBufferSizeConstant          = 64 * 1024
	maximumLineBufferSizeConstant          = 4 * 1024 * 1024
	outputDrainDelayConstant               = 2 * time.Second
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command using os/exec. Output streams with a LineHandler are delivered line by line
// while the process runs; the remaining streams are captured in the result.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	executable.Env = buildEnvironment(command.Details)
	// Child processes may keep the output pipes open after the launcher is killed.
	executable.WaitDelay = outputDrainDelayConstant

	if command.Details.StandardInput != nil {
		executable.Stdin = command.Details.StandardInput
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	var streamGroup sync.WaitGroup

	standardOutputWriter, closeStandardOutput := streamDestination(command.Details.StandardOutputHandler, &standardOutputBuffer, &streamGroup)
	standardErrorWriter, closeStandardError := streamDestination(command.Details.StandardErrorHandler, &standardErrorBuffer, &streamGroup)
	executable.Stdout = standardOutputWriter
	executable.Stderr = standardErrorWriter

	startTime := time.Now()
	runError := executable.Run()
	closeStandardOutput()
	closeStandardError()
	streamGroup.Wait()
	duration := time.Since(startTime)

	if contextError := executionContext.Err(); contextError != nil && runError != nil {
		return ExecutionResult{}, contextError
	}

	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
				Duration:       duration,
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
		Duration:       duration,
	}, nil
}

// buildEnvironment returns nil to inherit the caller's environment unchanged.
func buildEnvironment(details CommandDetails) []string {
	if len(details.EnvironmentVariables) == 0 && !details.IsolatedEnvironment {
		return nil
	}

	environment := []string{}
	if !details.IsolatedEnvironment {
		environment = append(environment, os.Environ()...)
	}

	environmentKeys := make([]string, 0, len(details.EnvironmentVariables))
	for environmentKey := range details.EnvironmentVariables {
		environmentKeys = append(environmentKeys, environmentKey)
	}
	sort.Strings(environmentKeys)

	for _, environmentKey := range environmentKeys {
		environment = append(environment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, details.EnvironmentVariables[environmentKey]))
	}
	return environment
}

// streamDestination returns the writer handed to the process and a function that must be called once it exits.
func streamDestination(handler LineHandler, captureBuffer *bytes.Buffer, streamGroup *sync.WaitGroup) (io.Writer, func()) {
	if handler == nil {
		return captureBuffer, func() {}
	}

	pipeReader, pipeWriter := io.Pipe()
	streamGroup.Add(1)
	go func() {
		defer streamGroup.Done()
		forwardLines(pipeReader, handler)
	}()
	return pipeWriter, func() { _ = pipeWriter.Close() }
}

func forwardLines(reader *io.PipeReader, handler LineHandler) {
	lineScanner := bufio.NewScanner(reader)
	lineScanner.Buffer(make([]byte, 0, initialLineBufferSizeConstant), maximumLineBufferSizeConstant)
	for lineScanner.Scan() {
		handler(strings.TrimSuffix(lineScanner.Text(), carriageReturnSuffixConstant))
	}
	// Lines beyond the scanner limit end forwarding; the rest is drained so the process never blocks.
	if lineScanner.Err() != nil {
		_, _ = io.Copy(io.Discard, reader)
	}
}
