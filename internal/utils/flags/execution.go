// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"time"

	"github.com/spf13/cobra"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print the resolved command line without running it"
	// TimeoutFlagName exposes the shared timeout flag name.
	TimeoutFlagName = "timeout"
	// TimeoutFlagUsage describes the shared timeout flag purpose.
	TimeoutFlagUsage = "Stop the build after this duration (0 disables the limit)"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun  bool
	Timeout time.Duration
}

// ExecutionFlagValues stores parsed execution flag values.
type ExecutionFlagValues struct {
	DryRun  bool
	Timeout time.Duration
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun  ExecutionFlagDefinition
	Timeout ExecutionFlagDefinition
}

// DefaultExecutionFlagDefinitions enables both execution flags under their shared names.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		DryRun:  ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true},
		Timeout: ExecutionFlagDefinition{Name: TimeoutFlagName, Usage: TimeoutFlagUsage, Enabled: true},
	}
}

// BindExecutionFlags attaches standardized execution flags to the provided command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := ExecutionFlagValues{DryRun: defaults.DryRun, Timeout: defaults.Timeout}
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if definitions.DryRun.Enabled && len(definitions.DryRun.Name) > 0 {
		AddToggleFlag(flagSet, &values.DryRun, definitions.DryRun.Name, "", defaults.DryRun, definitions.DryRun.Usage)
	}
	if definitions.Timeout.Enabled && len(definitions.Timeout.Name) > 0 {
		flagSet.DurationVar(&values.Timeout, definitions.Timeout.Name, defaults.Timeout, definitions.Timeout.Usage)
	}

	return &values
}
