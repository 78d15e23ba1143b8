package flags

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindExecutionFlagsUsesDefaultsAndParsesValues(t *testing.T) {
	command := &cobra.Command{}

	values := BindExecutionFlags(command, ExecutionDefaults{Timeout: time.Minute}, DefaultExecutionFlagDefinitions())
	require.NotNil(t, values)
	require.False(t, values.DryRun)
	require.Equal(t, time.Minute, values.Timeout)

	parseError := command.ParseFlags([]string{"--dry-run", "--timeout", "90s"})
	require.NoError(t, parseError)
	require.True(t, values.DryRun)
	require.Equal(t, 90*time.Second, values.Timeout)
}

func TestBindExecutionFlagsSkipsDisabledDefinitions(t *testing.T) {
	command := &cobra.Command{}

	definitions := DefaultExecutionFlagDefinitions()
	definitions.Timeout.Enabled = false
	BindExecutionFlags(command, ExecutionDefaults{}, definitions)

	require.NotNil(t, command.Flags().Lookup(DryRunFlagName))
	require.Nil(t, command.Flags().Lookup(TimeoutFlagName))
}

func TestBindExecutionFlagsWithoutCommand(t *testing.T) {
	values := BindExecutionFlags(nil, ExecutionDefaults{DryRun: true}, DefaultExecutionFlagDefinitions())
	require.True(t, values.DryRun)
}
