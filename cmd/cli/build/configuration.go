package build

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/mvninvoker/internal/invoker"
	pathutils "github.com/temirov/mvninvoker/internal/utils/path"
)

const (
	configurationKeySeparatorConstant = "."
	batchModeConfigurationKeyConstant = "batch_mode"
	inheritEnvironmentKeyConstant     = "inherit_environment"
	timeoutConfigurationKeyConstant   = "timeout"
)

// CommandConfiguration captures configured defaults for the build command. Installation settings seed the
// command line builder; the remaining values fill request fields that neither the request file nor flags set.
type CommandConfiguration struct {
	MavenHome       string `mapstructure:"maven_home"`
	MavenExecutable string `mapstructure:"maven_executable"`
	BaseDirectory   string `mapstructure:"base_directory"`
	LocalRepository string `mapstructure:"local_repository"`

	JavaHome       string `mapstructure:"java_home"`
	MavenOptions   string `mapstructure:"maven_opts"`
	UserSettings   string `mapstructure:"user_settings"`
	GlobalSettings string `mapstructure:"global_settings"`
	Toolchains     string `mapstructure:"toolchains"`

	BatchMode          bool `mapstructure:"batch_mode"`
	NoTransferProgress bool `mapstructure:"no_transfer_progress"`
	ShowErrors         bool `mapstructure:"show_errors"`
	InheritEnvironment bool `mapstructure:"inherit_environment"`

	UpdateSnapshotsPolicy  invoker.UpdateSnapshotsPolicy  `mapstructure:"update_snapshots_policy"`
	GlobalChecksumPolicy   invoker.ChecksumPolicy         `mapstructure:"global_checksum_policy"`
	ReactorFailureBehavior invoker.ReactorFailureBehavior `mapstructure:"reactor_failure_behavior"`

	Profiles         []string      `mapstructure:"profiles"`
	EnvironmentFiles []string      `mapstructure:"environment_files"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// DefaultCommandConfiguration provides the build command settings used without any configuration file.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BatchMode:          true,
		InheritEnvironment: true,
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys nested under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(prefix, batchModeConfigurationKeyConstant): defaults.BatchMode,
		prefixedKey(prefix, inheritEnvironmentKeyConstant):     defaults.InheritEnvironment,
		prefixedKey(prefix, timeoutConfigurationKeyConstant):   defaults.Timeout.String(),
	}
}

// Sanitize trims values and resolves configured paths with resolver.
func (configuration CommandConfiguration) Sanitize(resolver *pathutils.PathResolver) CommandConfiguration {
	sanitized := configuration
	sanitized.MavenHome = resolver.Resolve(configuration.MavenHome)
	sanitized.BaseDirectory = resolver.Resolve(configuration.BaseDirectory)
	sanitized.LocalRepository = resolver.Resolve(configuration.LocalRepository)
	sanitized.JavaHome = resolver.Resolve(configuration.JavaHome)
	sanitized.UserSettings = resolver.Resolve(configuration.UserSettings)
	sanitized.GlobalSettings = resolver.Resolve(configuration.GlobalSettings)
	sanitized.Toolchains = resolver.Resolve(configuration.Toolchains)
	sanitized.EnvironmentFiles = resolver.ResolveAll(configuration.EnvironmentFiles)

	sanitized.MavenExecutable = strings.TrimSpace(configuration.MavenExecutable)
	if strings.ContainsAny(sanitized.MavenExecutable, `/\`) {
		sanitized.MavenExecutable = resolver.Resolve(sanitized.MavenExecutable)
	}
	sanitized.MavenOptions = strings.TrimSpace(configuration.MavenOptions)
	sanitized.Profiles = trimValues(configuration.Profiles)
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	return sanitized
}

// PolicyDecodeHook converts configuration strings into the policy types, rejecting unknown values.
func PolicyDecodeHook() mapstructure.DecodeHookFuncType {
	updateSnapshotsPolicyType := reflect.TypeOf(invoker.UpdateSnapshotsPolicyDefault)
	checksumPolicyType := reflect.TypeOf(invoker.ChecksumPolicyDefault)
	reactorFailureBehaviorType := reflect.TypeOf(invoker.ReactorFailureBehaviorFailFast)

	return func(sourceType reflect.Type, targetType reflect.Type, value any) (any, error) {
		if sourceType.Kind() != reflect.String {
			return value, nil
		}
		textValue := reflect.ValueOf(value).String()

		switch targetType {
		case updateSnapshotsPolicyType:
			return invoker.ParseUpdateSnapshotsPolicy(textValue)
		case checksumPolicyType:
			return invoker.ParseChecksumPolicy(textValue)
		case reactorFailureBehaviorType:
			return invoker.ParseReactorFailureBehavior(textValue)
		default:
			return value, nil
		}
	}
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

func trimValues(rawValues []string) []string {
	trimmed := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		value := strings.TrimSpace(rawValue)
		if len(value) == 0 {
			continue
		}
		trimmed = append(trimmed, value)
	}
	if len(trimmed) == 0 {
		return nil
	}
	return trimmed
}
