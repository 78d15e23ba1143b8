package build_test

import (
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mvninvoker/cmd/cli/build"
	"github.com/temirov/mvninvoker/internal/invoker"
	pathutils "github.com/temirov/mvninvoker/internal/utils/path"
)

func TestDefaultConfigurationValues(testInstance *testing.T) {
	require.Equal(testInstance, map[string]any{
		"invoker.batch_mode":          true,
		"invoker.inherit_environment": true,
		"invoker.timeout":             "0s",
	}, build.DefaultConfigurationValues("invoker"))

	require.Contains(testInstance, build.DefaultConfigurationValues(" "), "batch_mode")
}

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	anchorDirectory := testInstance.TempDir()
	resolver := pathutils.NewPathResolver().Anchored(anchorDirectory)

	sanitized := build.CommandConfiguration{
		MavenHome:        " tools/maven ",
		MavenExecutable:  " bin/mvnw ",
		BaseDirectory:    "/srv/project",
		UserSettings:     "settings.xml",
		MavenOptions:     "  -Xmx2g ",
		Profiles:         []string{" ci ", "", "release"},
		EnvironmentFiles: []string{"", "build.env"},
		Timeout:          -time.Second,
	}.Sanitize(resolver)

	require.Equal(testInstance, filepath.Join(anchorDirectory, "tools", "maven"), sanitized.MavenHome)
	require.Equal(testInstance, filepath.Join(anchorDirectory, "bin", "mvnw"), sanitized.MavenExecutable)
	require.Equal(testInstance, "/srv/project", sanitized.BaseDirectory)
	require.Equal(testInstance, filepath.Join(anchorDirectory, "settings.xml"), sanitized.UserSettings)
	require.Equal(testInstance, "-Xmx2g", sanitized.MavenOptions)
	require.Equal(testInstance, []string{"ci", "release"}, sanitized.Profiles)
	require.Equal(testInstance, []string{filepath.Join(anchorDirectory, "build.env")}, sanitized.EnvironmentFiles)
	require.Zero(testInstance, sanitized.Timeout)

	bareExecutable := build.CommandConfiguration{MavenExecutable: "mvnd"}.Sanitize(resolver)
	require.Equal(testInstance, "mvnd", bareExecutable.MavenExecutable)
}

func TestPolicyDecodeHook(testInstance *testing.T) {
	decodeHook := build.PolicyDecodeHook()
	stringType := reflect.TypeOf("")

	testCases := []struct {
		name            string
		targetType      reflect.Type
		value           any
		expectedValue   any
		expectedMessage string
	}{
		{name: "update_policy", targetType: reflect.TypeOf(invoker.UpdateSnapshotsPolicyDefault), value: "Always", expectedValue: invoker.UpdateSnapshotsPolicyAlways},
		{name: "checksum_policy", targetType: reflect.TypeOf(invoker.ChecksumPolicyDefault), value: "warn", expectedValue: invoker.ChecksumPolicyWarn},
		{name: "reactor_behavior", targetType: reflect.TypeOf(invoker.ReactorFailureBehaviorFailFast), value: "fail-never", expectedValue: invoker.ReactorFailureBehaviorFailNever},
		{name: "unrelated_target", targetType: stringType, value: "Always", expectedValue: "Always"},
		{name: "invalid_policy", targetType: reflect.TypeOf(invoker.ChecksumPolicyDefault), value: "ignore", expectedMessage: "unsupported checksum policy"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			decodedValue, decodeError := decodeHook(stringType, testCase.targetType, testCase.value)
			if len(testCase.expectedMessage) > 0 {
				require.ErrorContains(testInstance, decodeError, testCase.expectedMessage)
				return
			}
			require.NoError(testInstance, decodeError)
			require.Equal(testInstance, testCase.expectedValue, decodedValue)
		})
	}
}
