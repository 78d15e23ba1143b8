package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/mvninvoker/cmd/cli"
	"github.com/temirov/mvninvoker/cmd/cli/build"
	"github.com/temirov/mvninvoker/internal/invoker"
)

const (
	testSubtestNameTemplateConstant            = "%d_%s"
	testConfigurationFileNameConstant          = "config.yaml"
	testConfigurationSearchPathEnvironmentName = "MVNINVOKER_CONFIG_SEARCH_PATH"
	testMavenOptionsEnvironmentName            = "MVNINVOKER_INVOKER_MAVEN_OPTS"
	testBuildCommandNameConstant               = "build"
)

func TestApplicationEmbeddedDefaults(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.True(testInstance, configuration.Invoker.BatchMode)
	require.True(testInstance, configuration.Invoker.InheritEnvironment)
	require.False(testInstance, configuration.Invoker.ShowErrors)
	require.Empty(testInstance, configuration.Invoker.MavenHome)
	require.Equal(testInstance, invoker.UpdateSnapshotsPolicyDefault, configuration.Invoker.UpdateSnapshotsPolicy)
	require.Equal(testInstance, invoker.ReactorFailureBehavior(""), configuration.Invoker.ReactorFailureBehavior)
	require.Empty(testInstance, configuration.Invoker.Profiles)
	require.Zero(testInstance, configuration.Invoker.Timeout)
}

func TestApplicationInitializeConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		configurationContent  string
		environment           map[string]string
		expectedErrorMessage  string
		expectedConfiguration func(testInstance *testing.T, configuration cli.ApplicationConfiguration)
	}{
		{
			name:                 "embedded_defaults_only",
			configurationContent: "",
			expectedConfiguration: func(testInstance *testing.T, configuration cli.ApplicationConfiguration) {
				require.Equal(testInstance, "info", configuration.Common.LogLevel)
				require.True(testInstance, configuration.Invoker.BatchMode)
			},
		},
		{
			name: "configuration_file_values",
			configurationContent: "common:\n  log_level: debug\n  log_format: structured\n" +
				"invoker:\n  maven_home: /opt/maven\n  batch_mode: false\n  update_snapshots_policy: Always\n" +
				"  reactor_failure_behavior: fail-at-end\n  profiles: [ci, release]\n  timeout: 90s\n",
			expectedConfiguration: func(testInstance *testing.T, configuration cli.ApplicationConfiguration) {
				require.Equal(testInstance, "debug", configuration.Common.LogLevel)
				require.Equal(testInstance, "structured", configuration.Common.LogFormat)
				require.Equal(testInstance, "/opt/maven", configuration.Invoker.MavenHome)
				require.False(testInstance, configuration.Invoker.BatchMode)
				require.True(testInstance, configuration.Invoker.InheritEnvironment)
				require.Equal(testInstance, invoker.UpdateSnapshotsPolicyAlways, configuration.Invoker.UpdateSnapshotsPolicy)
				require.Equal(testInstance, invoker.ReactorFailureBehaviorFailAtEnd, configuration.Invoker.ReactorFailureBehavior)
				require.Equal(testInstance, []string{"ci", "release"}, configuration.Invoker.Profiles)
				require.Equal(testInstance, 90*time.Second, configuration.Invoker.Timeout)
			},
		},
		{
			name:                 "environment_override",
			configurationContent: "invoker:\n  maven_opts: -Xmx512m\n",
			environment:          map[string]string{testMavenOptionsEnvironmentName: "-Xmx2g"},
			expectedConfiguration: func(testInstance *testing.T, configuration cli.ApplicationConfiguration) {
				require.Equal(testInstance, "-Xmx2g", configuration.Invoker.MavenOptions)
			},
		},
		{
			name:                 "invalid_policy",
			configurationContent: "invoker:\n  global_checksum_policy: ignore\n",
			expectedErrorMessage: "unsupported checksum policy",
		},
		{
			name:                 "malformed_configuration",
			configurationContent: "invoker: [unterminated\n",
			expectedErrorMessage: "unable to load configuration",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			configurationDirectory := testInstance.TempDir()
			if len(testCase.configurationContent) > 0 {
				writeConfigurationFile(testInstance, filepath.Join(configurationDirectory, testConfigurationFileNameConstant), testCase.configurationContent)
			}
			testInstance.Setenv(testConfigurationSearchPathEnvironmentName, configurationDirectory)
			for environmentName, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentName, environmentValue)
			}

			application := cli.NewApplication()
			initializationError := application.InitializeForCommand(testBuildCommandNameConstant)

			if len(testCase.expectedErrorMessage) > 0 {
				require.ErrorContains(testInstance, initializationError, testCase.expectedErrorMessage)
				return
			}
			require.NoError(testInstance, initializationError)
			testCase.expectedConfiguration(testInstance, application.Configuration())
		})
	}
}

func TestApplicationInitializeUnknownCommand(testInstance *testing.T) {
	testInstance.Setenv(testConfigurationSearchPathEnvironmentName, testInstance.TempDir())

	initializationError := cli.NewApplication().InitializeForCommand("deploy")
	require.ErrorContains(testInstance, initializationError, "unknown command \"deploy\"")
}

func TestExitCode(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{name: "success", executionError: nil, expectedExitCode: 0},
		{name: "generic_failure", executionError: errors.New("unable to load configuration"), expectedExitCode: 1},
		{name: "maven_exit_code", executionError: build.BuildFailedError{ExitCode: 3}, expectedExitCode: 3},
		{name: "wrapped_maven_exit_code", executionError: fmt.Errorf("build: %w", build.BuildFailedError{ExitCode: 2}), expectedExitCode: 2},
		{name: "non_positive_exit_code", executionError: build.BuildFailedError{ExitCode: -1}, expectedExitCode: 1},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, cli.ExitCode(testCase.executionError))
		})
	}
}

func writeConfigurationFile(testInstance *testing.T, configurationPath string, configurationContent string) {
	testInstance.Helper()

	writeError := os.WriteFile(configurationPath, []byte(configurationContent), 0o600)
	require.NoError(testInstance, writeError)
}

func decodeEmbeddedApplicationConfiguration(testInstance testing.TB) cli.ApplicationConfiguration {
	testInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testInstance, readError)

	decodeHook := mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeDurationHookFunc(), build.PolicyDecodeHook())
	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration, viper.DecodeHook(decodeHook))
	require.NoError(testInstance, unmarshalError)

	return configuration
}
