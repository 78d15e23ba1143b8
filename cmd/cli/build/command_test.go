package build_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mvninvoker/cmd/cli/build"
	"github.com/temirov/mvninvoker/internal/execshell"
	"github.com/temirov/mvninvoker/internal/invoker"
	"github.com/temirov/mvninvoker/internal/utils"
)

const (
	testSubtestNameTemplateConstant = "%d_%s"
	testProjectDirectoryConstant    = "project"
	testMavenHomeDirectoryConstant  = "maven"
	testPomFileNameConstant         = "pom.xml"
)

type commandFixture struct {
	rootDirectory  string
	projectPath    string
	mavenHome      string
	launcherPath   string
	configuration  build.CommandConfiguration
	executor       *recordingCommandExecutor
	standardOutput bytes.Buffer
	standardError  bytes.Buffer
}

type recordingCommandExecutor struct {
	commands       []execshell.ShellCommand
	outputLines    []string
	exitCode       int
	executionError error
}

func (executor *recordingCommandExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, command)
	for _, line := range executor.outputLines {
		command.Details.StandardOutputHandler(line)
	}
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	if executor.exitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: execshell.ExecutionResult{ExitCode: executor.exitCode}}
	}
	return execshell.ExecutionResult{}, nil
}

func newCommandFixture(testInstance *testing.T) *commandFixture {
	testInstance.Helper()

	rootDirectory, evaluationError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, evaluationError)

	projectPath := filepath.Join(rootDirectory, testProjectDirectoryConstant)
	mavenHome := filepath.Join(rootDirectory, testMavenHomeDirectoryConstant)
	launcherPath := filepath.Join(mavenHome, "bin", "mvn")
	writeFile(testInstance, filepath.Join(projectPath, testPomFileNameConstant), "<project/>")
	writeFile(testInstance, launcherPath, "#!/bin/sh\n")

	configuration := build.DefaultCommandConfiguration()
	configuration.MavenHome = mavenHome
	configuration.BaseDirectory = projectPath

	return &commandFixture{
		rootDirectory: rootDirectory,
		projectPath:   projectPath,
		mavenHome:     mavenHome,
		launcherPath:  launcherPath,
		configuration: configuration,
		executor:      &recordingCommandExecutor{},
	}
}

func (fixture *commandFixture) execute(testInstance *testing.T, executionContext context.Context, arguments ...string) error {
	testInstance.Helper()

	commandBuilder := build.CommandBuilder{
		ConfigurationProvider: func() build.CommandConfiguration { return fixture.configuration },
		CommandExecutor:       fixture.executor,
		BuilderDependencies: invoker.BuilderDependencies{
			OperatingSystemFamily: func() invoker.OperatingSystemFamily { return invoker.OperatingSystemFamilyUnix },
			ExecutableLookup:      func(string) (string, error) { return "", exec.ErrNotFound },
			EnvironmentLookup:     func(string) (string, bool) { return "", false },
		},
	}
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	command.SetArgs(arguments)
	command.SetOut(&fixture.standardOutput)
	command.SetErr(&fixture.standardError)
	command.SilenceUsage = true
	command.SilenceErrors = true
	return command.ExecuteContext(executionContext)
}

func (fixture *commandFixture) recordedCommand(testInstance *testing.T) execshell.ShellCommand {
	testInstance.Helper()
	require.Len(testInstance, fixture.executor.commands, 1)
	return fixture.executor.commands[0]
}

func writeFile(testInstance *testing.T, filePath string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o644))
}

func TestBuildCommandDryRunPrintsInvocation(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.configuration.MavenOptions = "-Xmx1g"

	executionError := fixture.execute(testInstance, context.Background(), "--dry-run", "-DskipTests", "-P", "ci,release", "--", "clean", "verify")
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, fixture.executor.commands)

	expectedOutput := fmt.Sprintf(
		"working directory: %s\nenvironment: MAVEN_OPTS=-Xmx1g\ncommand: %s -B -D skipTests=true -P ci,release clean verify\n",
		fixture.projectPath,
		fixture.launcherPath,
	)
	require.Equal(testInstance, expectedOutput, fixture.standardOutput.String())
}

func TestBuildCommandLayersSources(testInstance *testing.T) {
	testCases := []struct {
		name              string
		requestDocument   string
		arguments         []string
		expectedArguments []string
	}{
		{
			name:              "configuration_defaults",
			arguments:         []string{"install"},
			expectedArguments: []string{"-B", "install"},
		},
		{
			name:              "flag_disables_configured_batch_mode",
			arguments:         []string{"--batch-mode=no", "--offline", "install"},
			expectedArguments: []string{"-o", "install"},
		},
		{
			name:              "request_file_values",
			requestDocument:   "offline: true\nthreads: 2\narguments: [package]\n",
			arguments:         []string{"install"},
			expectedArguments: []string{"-B", "-o", "-T", "2", "package", "install"},
		},
		{
			name:              "request_file_disables_configured_batch_mode",
			requestDocument:   "batch_mode: false\n",
			arguments:         []string{"install"},
			expectedArguments: []string{"install"},
		},
		{
			name:              "request_file_without_toggle_keeps_configured_batch_mode",
			requestDocument:   "quiet: true\n",
			arguments:         []string{"install"},
			expectedArguments: []string{"-B", "-q", "install"},
		},
		{
			name:              "flag_reenables_batch_mode_disabled_by_request_file",
			requestDocument:   "batch_mode: false\n",
			arguments:         []string{"--batch-mode", "install"},
			expectedArguments: []string{"-B", "install"},
		},
		{
			name:              "flags_override_request_file",
			requestDocument:   "threads: 2\nglobal_checksum_policy: warn\n",
			arguments:         []string{"-T", "4", "--checksum-policy", "FAIL", "deploy"},
			expectedArguments: []string{"-B", "-C", "-T", "4", "deploy"},
		},
		{
			name:              "reactor_selection",
			arguments:         []string{"--projects", "core,web", "--also-make", "--reactor-failure", "fail-at-end", "verify"},
			expectedArguments: []string{"-B", "-pl", "core,web", "-am", "-fae", "verify"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			arguments := testCase.arguments
			if len(testCase.requestDocument) > 0 {
				requestPath := filepath.Join(fixture.rootDirectory, "request.yaml")
				writeFile(testInstance, requestPath, testCase.requestDocument)
				arguments = append([]string{"--request", requestPath}, arguments...)
			}

			require.NoError(testInstance, fixture.execute(testInstance, context.Background(), arguments...))

			shellCommand := fixture.recordedCommand(testInstance)
			require.Equal(testInstance, execshell.CommandName(fixture.launcherPath), shellCommand.Name)
			require.Equal(testInstance, testCase.expectedArguments, shellCommand.Details.Arguments)
			require.Equal(testInstance, fixture.projectPath, shellCommand.Details.WorkingDirectory)
		})
	}
}

func TestBuildCommandEnvironmentSources(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	environmentFilePath := filepath.Join(fixture.rootDirectory, "build.env")
	writeFile(testInstance, environmentFilePath, "CI=true\nDEPLOY_TARGET=staging\n")
	fixture.configuration.JavaHome = "/opt/jdk-21"

	executionError := fixture.execute(testInstance, context.Background(),
		"--env-file", environmentFilePath,
		"--env", "DEPLOY_TARGET=production",
		"--inherit-environment=no",
		"verify",
	)
	require.NoError(testInstance, executionError)

	shellCommand := fixture.recordedCommand(testInstance)
	require.True(testInstance, shellCommand.Details.IsolatedEnvironment)
	require.Equal(testInstance, map[string]string{
		"CI":            "true",
		"DEPLOY_TARGET": "production",
		"JAVA_HOME":     "/opt/jdk-21",
	}, shellCommand.Details.EnvironmentVariables)
}

func TestBuildCommandRejectsInvalidInput(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedMessage string
	}{
		{name: "environment_without_separator", arguments: []string{"--env", "CI", "verify"}, expectedMessage: "invalid environment assignment"},
		{name: "property_without_name", arguments: []string{"-D", "=value", "verify"}, expectedMessage: "invalid property definition"},
		{name: "unknown_policy", arguments: []string{"--update-snapshots-policy", "daily", "verify"}, expectedMessage: "expected one of always, never"},
		{name: "missing_environment_file", arguments: []string{"--env-file", "/nonexistent/build.env", "verify"}, expectedMessage: "unable to read environment files"},
		{name: "missing_request_file", arguments: []string{"--request", "/nonexistent/request.yaml"}, expectedMessage: "unable to load request file"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture := newCommandFixture(testInstance)
			executionError := fixture.execute(testInstance, context.Background(), testCase.arguments...)
			require.ErrorContains(testInstance, executionError, testCase.expectedMessage)
			require.Empty(testInstance, fixture.executor.commands)
		})
	}
}

func TestBuildCommandReportsOutcome(testInstance *testing.T) {
	testInstance.Run("output_forwarded", func(testInstance *testing.T) {
		fixture := newCommandFixture(testInstance)
		fixture.executor.outputLines = []string{"[INFO] BUILD SUCCESS"}

		require.NoError(testInstance, fixture.execute(testInstance, context.Background(), "verify"))
		require.Equal(testInstance, "[INFO] BUILD SUCCESS\n", fixture.standardOutput.String())
	})

	testInstance.Run("failed_build", func(testInstance *testing.T) {
		fixture := newCommandFixture(testInstance)
		fixture.executor.exitCode = 2

		executionError := fixture.execute(testInstance, context.Background(), "verify")
		var buildFailure build.BuildFailedError
		require.ErrorAs(testInstance, executionError, &buildFailure)
		require.Equal(testInstance, 2, buildFailure.ExitStatus())
	})

	testInstance.Run("launch_failure", func(testInstance *testing.T) {
		fixture := newCommandFixture(testInstance)
		fixture.executor.executionError = execshell.CommandExecutionError{Cause: exec.ErrNotFound}

		executionError := fixture.execute(testInstance, context.Background(), "verify")
		require.ErrorIs(testInstance, executionError, exec.ErrNotFound)
		require.ErrorContains(testInstance, executionError, "unable to run maven")
	})

	testInstance.Run("resolution_failure", func(testInstance *testing.T) {
		fixture := newCommandFixture(testInstance)
		fixture.configuration.MavenHome = fixture.projectPath

		executionError := fixture.execute(testInstance, context.Background(), "verify")
		require.ErrorIs(testInstance, executionError, invoker.ErrExecutableNotFound)
		require.Empty(testInstance, fixture.executor.commands)
	})
}

func TestBuildCommandAnchorsConfiguredPathsAtConfigurationFile(testInstance *testing.T) {
	fixture := newCommandFixture(testInstance)
	fixture.configuration.BaseDirectory = testProjectDirectoryConstant
	fixture.configuration.MavenHome = testMavenHomeDirectoryConstant

	configurationPath := filepath.Join(fixture.rootDirectory, "config.yaml")
	executionContext := utils.NewCommandContextAccessor().WithConfigurationFilePath(context.Background(), configurationPath)

	require.NoError(testInstance, fixture.execute(testInstance, executionContext, "verify"))

	shellCommand := fixture.recordedCommand(testInstance)
	require.Equal(testInstance, execshell.CommandName(fixture.launcherPath), shellCommand.Name)
	require.Equal(testInstance, fixture.projectPath, shellCommand.Details.WorkingDirectory)
}
