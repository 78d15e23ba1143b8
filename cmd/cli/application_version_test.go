package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicationVersionFlagPrintsVersionAndExits(testInstance *testing.T) {
	testInstance.Setenv(configurationSearchPathEnvironmentConstant, testInstance.TempDir())

	application := NewApplication()
	application.versionResolver = func(context.Context) string {
		return "v2.0.0"
	}

	exitCode := -1
	sentinel := "version-exit"
	application.exitFunction = func(code int) {
		exitCode = code
		panic(sentinel)
	}

	var standardOutput bytes.Buffer
	application.rootCommand.SetOut(&standardOutput)
	application.rootCommand.SetArgs([]string{"--version"})

	require.PanicsWithValue(testInstance, sentinel, func() {
		_ = application.Execute()
	})

	require.Equal(testInstance, "mvn-invoker version: v2.0.0\n", standardOutput.String())
	require.Equal(testInstance, 0, exitCode)
}
