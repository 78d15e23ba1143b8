package invoker_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mvninvoker/internal/invoker"
)

const testRequestDocumentConstant = `
base_directory: project
local_repository: /var/cache/m2
maven_home: ~/tools/maven
maven_executable: mvnw
batch_mode: true
debug: true
update_snapshots_policy: Never
global_checksum_policy: warn
reactor_failure_behavior: fail-at-end
projects: [core, web]
also_make: true
profiles:
  - release
  - sign
threads: 1C
goals: [clean]
arguments: [deploy]
properties:
  zeta: last
  alpha: "first value"
  skipTests: true
environment:
  CI: "true"
inherit_environment: false
timeout: 15m
`

func TestParseRequestDocument(testInstance *testing.T) {
	request, parseError := invoker.ParseRequestDocument([]byte(testRequestDocumentConstant))
	require.NoError(testInstance, parseError)

	require.Equal(testInstance, "project", request.BaseDirectory)
	require.Equal(testInstance, "mvnw", request.MavenExecutable)
	require.True(testInstance, request.BatchMode)
	require.True(testInstance, request.Debug)
	require.Equal(testInstance, invoker.UpdateSnapshotsPolicyNever, request.UpdateSnapshotsPolicy)
	require.Equal(testInstance, invoker.ChecksumPolicyWarn, request.GlobalChecksumPolicy)
	require.Equal(testInstance, invoker.ReactorFailureBehaviorFailAtEnd, request.ReactorFailureBehavior)
	require.Equal(testInstance, []string{"core", "web"}, request.Projects)
	require.True(testInstance, request.AlsoMake)
	require.Equal(testInstance, []string{"release", "sign"}, request.Profiles)
	require.Equal(testInstance, "1C", request.Threads)
	require.Equal(testInstance, []string{"clean"}, request.Goals)
	require.Equal(testInstance, []string{"deploy"}, request.Arguments)
	require.Equal(testInstance, invoker.Properties{
		{Key: "zeta", Value: "last"},
		{Key: "alpha", Value: "first value"},
		{Key: "skipTests", Value: "true"},
	}, request.Properties)
	require.Equal(testInstance, map[string]string{"CI": "true"}, request.ShellEnvironment)
	require.False(testInstance, request.InheritsShellEnvironment())
	require.Equal(testInstance, 15*time.Minute, request.Timeout)
}

func TestParseRequestDocumentAcceptsRequestWrapper(testInstance *testing.T) {
	request, parseError := invoker.ParseRequestDocument([]byte("request:\n  quiet: true\n  arguments: [verify]\n"))
	require.NoError(testInstance, parseError)
	require.True(testInstance, request.Quiet)
	require.Equal(testInstance, []string{"verify"}, request.Arguments)
	require.True(testInstance, request.InheritsShellEnvironment())
}

func TestParseRequestDocumentErrors(testInstance *testing.T) {
	testCases := []struct {
		name            string
		document        string
		expectedMessage string
	}{
		{name: "unknown_update_policy", document: "update_snapshots_policy: sometimes\n", expectedMessage: "unsupported update snapshots policy"},
		{name: "unknown_checksum_policy", document: "global_checksum_policy: ignore\n", expectedMessage: "unsupported checksum policy"},
		{name: "unknown_reactor_behavior", document: "reactor_failure_behavior: retry\n", expectedMessage: "unsupported reactor failure behavior"},
		{name: "invalid_timeout", document: "timeout: soon\n", expectedMessage: "invalid invocation request timeout"},
		{name: "properties_sequence", document: "properties: [a, b]\n", expectedMessage: "properties must be a mapping"},
		{name: "nested_property_value", document: "properties:\n  key:\n    nested: value\n", expectedMessage: "property \"key\" must be a scalar value"},
		{name: "malformed_yaml", document: "arguments: [unterminated\n", expectedMessage: "failed to parse invocation request"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			_, parseError := invoker.ParseRequestDocument([]byte(testCase.document))
			require.Error(testInstance, parseError)
			require.ErrorContains(testInstance, parseError, testCase.expectedMessage)
		})
	}
}

func TestParseEmptyRequestDocument(testInstance *testing.T) {
	request, parseError := invoker.ParseRequestDocument([]byte(""))
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, invoker.InvocationRequest{}, request)
}

func TestParseRequestDocumentWithDefaultsKeepsOmittedToggles(testInstance *testing.T) {
	defaults := invoker.InvocationRequest{BatchMode: true, NoTransferProgress: true, ShowErrors: true}

	testCases := []struct {
		name     string
		document string
		expected invoker.InvocationRequest
	}{
		{name: "empty_document", document: "", expected: defaults},
		{
			name:     "explicit_false_overrides",
			document: "batch_mode: false\nshow_errors: false\n",
			expected: invoker.InvocationRequest{NoTransferProgress: true},
		},
		{
			name:     "wrapped_explicit_false_overrides",
			document: "request:\n  no_transfer_progress: false\n",
			expected: invoker.InvocationRequest{BatchMode: true, ShowErrors: true},
		},
		{
			name:     "other_keys_leave_defaults",
			document: "offline: true\n",
			expected: invoker.InvocationRequest{BatchMode: true, NoTransferProgress: true, ShowErrors: true, Offline: true},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			request, parseError := invoker.ParseRequestDocumentWithDefaults([]byte(testCase.document), defaults)
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, request)
		})
	}
}

func TestLoadRequestFileWithDefaultsHonorsExplicitFalse(testInstance *testing.T) {
	documentPath := filepath.Join(testInstance.TempDir(), "build.yaml")
	require.NoError(testInstance, os.WriteFile(documentPath, []byte("batch_mode: false\n"), 0o644))

	request, loadError := invoker.LoadRequestFileWithDefaults(documentPath, invoker.InvocationRequest{BatchMode: true, ShowErrors: true})
	require.NoError(testInstance, loadError)
	require.False(testInstance, request.BatchMode)
	require.True(testInstance, request.ShowErrors)
}

func TestLoadRequestFileAnchorsRelativePaths(testInstance *testing.T) {
	documentDirectory := testInstance.TempDir()
	documentPath := filepath.Join(documentDirectory, "build.yaml")
	require.NoError(testInstance, os.WriteFile(documentPath, []byte(testRequestDocumentConstant+"user_settings: conf/settings.xml\npom_file: module/pom.xml\n"), 0o644))

	request, loadError := invoker.LoadRequestFile(documentPath)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, filepath.Join(documentDirectory, "project"), request.BaseDirectory)
	require.Equal(testInstance, filepath.Join(documentDirectory, "conf", "settings.xml"), request.UserSettingsFile)
	require.Equal(testInstance, "module/pom.xml", request.PomFile)
	require.Equal(testInstance, "/var/cache/m2", request.LocalRepositoryDirectory)
	require.Equal(testInstance, "~/tools/maven", request.MavenHome)
	require.Equal(testInstance, "mvnw", request.MavenExecutable)
}

func TestLoadRequestFileFailures(testInstance *testing.T) {
	_, emptyPathError := invoker.LoadRequestFile("  ")
	require.Error(testInstance, emptyPathError)

	_, missingFileError := invoker.LoadRequestFile(filepath.Join(testInstance.TempDir(), "missing.yaml"))
	require.ErrorContains(testInstance, missingFileError, "failed to load invocation request")
}
