package utils_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mvninvoker/internal/utils"
)

func TestCommandContextAccessorConfigurationFilePath(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()
	configurationFilePath := filepath.Join(testInstance.TempDir(), "config.yaml")

	executionContext := accessor.WithConfigurationFilePath(context.Background(), configurationFilePath)

	storedPath, available := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, available)
	require.Equal(testInstance, configurationFilePath, storedPath)

	configurationDirectory, directoryAvailable := accessor.ConfigurationDirectory(executionContext)
	require.True(testInstance, directoryAvailable)
	require.Equal(testInstance, filepath.Dir(configurationFilePath), configurationDirectory)
}

func TestCommandContextAccessorWithoutConfigurationFile(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, available := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, available)

	_, emptyAvailable := accessor.ConfigurationDirectory(accessor.WithConfigurationFilePath(context.Background(), ""))
	require.False(testInstance, emptyAvailable)
}
