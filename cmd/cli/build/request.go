package build

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/temirov/mvninvoker/internal/invoker"
	pathutils "github.com/temirov/mvninvoker/internal/utils/path"
)

const (
	assignmentSeparatorConstant                = "="
	implicitPropertyValueConstant              = "true"
	environmentAssignmentErrorTemplateConstant = "invalid environment assignment %q (expected NAME=VALUE)"
	environmentFileErrorTemplateConstant       = "unable to read environment files: %w"
	requestFileErrorTemplateConstant           = "unable to load request file: %w"
	propertyAssignmentErrorTemplateConstant    = "invalid property definition %q (empty name)"
)

// requestFlags holds the raw values of the build command's request flags.
type requestFlags struct {
	requestFile string

	pomFile         string
	pomFileName     string
	baseDirectory   string
	mavenHome       string
	mavenExecutable string
	localRepository string
	javaHome        string
	mavenOptions    string
	userSettings    string
	globalSettings  string
	toolchains      string

	batchMode                    bool
	offline                      bool
	updateSnapshots              bool
	debug                        bool
	showErrors                   bool
	quiet                        bool
	nonRecursive                 bool
	showVersion                  bool
	noTransferProgress           bool
	ignoreTransitiveRepositories bool
	alsoMake                     bool
	alsoMakeDependents           bool
	inheritEnvironment           bool

	updateSnapshotsPolicy  string
	globalChecksumPolicy   string
	reactorFailureBehavior string

	projects   []string
	resumeFrom string
	builder    string
	threads    string
	profiles   []string

	properties       []string
	environment      []string
	environmentFiles []string
}

// requestAssembler layers configuration, an optional request file and command line flags into one request.
type requestAssembler struct {
	configuration CommandConfiguration
	flags         *requestFlags
	flagSet       *pflag.FlagSet
	pathResolver  *pathutils.PathResolver
}

func (assembler requestAssembler) assemble(arguments []string, timeout time.Duration, timeoutChanged bool) (invoker.InvocationRequest, error) {
	request := assembler.configuredToggles()
	requestFilePath := assembler.pathResolver.Resolve(assembler.flags.requestFile)
	if len(requestFilePath) > 0 {
		loadedRequest, loadError := invoker.LoadRequestFileWithDefaults(requestFilePath, request)
		if loadError != nil {
			return invoker.InvocationRequest{}, fmt.Errorf(requestFileErrorTemplateConstant, loadError)
		}
		request = loadedRequest
	}

	assembler.applyConfiguration(&request)
	if environmentError := assembler.applyEnvironment(&request); environmentError != nil {
		return invoker.InvocationRequest{}, environmentError
	}
	if flagError := assembler.applyFlags(&request); flagError != nil {
		return invoker.InvocationRequest{}, flagError
	}

	if timeoutChanged {
		request.Timeout = timeout
	}
	request.AddArguments(arguments...)
	return request, nil
}

// configuredToggles returns a request carrying the configured boolean defaults. A request file key overrides them
// even when it switches a toggle off.
func (assembler requestAssembler) configuredToggles() invoker.InvocationRequest {
	return invoker.InvocationRequest{
		BatchMode:          assembler.configuration.BatchMode,
		NoTransferProgress: assembler.configuration.NoTransferProgress,
		ShowErrors:         assembler.configuration.ShowErrors,
	}
}

// applyConfiguration fills request fields that the request file left empty. Installation settings are applied to
// the builder instead so request values keep their precedence.
func (assembler requestAssembler) applyConfiguration(request *invoker.InvocationRequest) {
	configuration := assembler.configuration
	fillString(&request.JavaHome, configuration.JavaHome)
	fillString(&request.MavenOptions, configuration.MavenOptions)
	fillString(&request.UserSettingsFile, configuration.UserSettings)
	fillString(&request.GlobalSettingsFile, configuration.GlobalSettings)
	fillString(&request.ToolchainsFile, configuration.Toolchains)

	if len(request.UpdateSnapshotsPolicy) == 0 {
		request.UpdateSnapshotsPolicy = configuration.UpdateSnapshotsPolicy
	}
	if len(request.GlobalChecksumPolicy) == 0 {
		request.GlobalChecksumPolicy = configuration.GlobalChecksumPolicy
	}
	if len(request.ReactorFailureBehavior) == 0 {
		request.ReactorFailureBehavior = configuration.ReactorFailureBehavior
	}
	if len(request.Profiles) == 0 {
		request.Profiles = append([]string{}, configuration.Profiles...)
	}
	if request.ShellEnvironmentInherited == nil {
		inheritEnvironment := configuration.InheritEnvironment
		request.ShellEnvironmentInherited = &inheritEnvironment
	}
	if request.Timeout == 0 {
		request.Timeout = configuration.Timeout
	}
}

// applyEnvironment loads dotenv files in order, then explicit assignments. Later sources override earlier ones.
func (assembler requestAssembler) applyEnvironment(request *invoker.InvocationRequest) error {
	environmentFiles := append([]string{}, assembler.configuration.EnvironmentFiles...)
	environmentFiles = append(environmentFiles, assembler.pathResolver.ResolveAll(assembler.flags.environmentFiles)...)
	for _, environmentFile := range environmentFiles {
		fileEnvironment, readError := godotenv.Read(environmentFile)
		if readError != nil {
			return fmt.Errorf(environmentFileErrorTemplateConstant, readError)
		}
		for environmentName, environmentValue := range fileEnvironment {
			request.AddShellEnvironment(environmentName, environmentValue)
		}
	}

	for _, assignment := range assembler.flags.environment {
		environmentName, environmentValue, found := strings.Cut(assignment, assignmentSeparatorConstant)
		environmentName = strings.TrimSpace(environmentName)
		if !found || len(environmentName) == 0 {
			return fmt.Errorf(environmentAssignmentErrorTemplateConstant, assignment)
		}
		request.AddShellEnvironment(environmentName, environmentValue)
	}
	return nil
}

func (assembler requestAssembler) applyFlags(request *invoker.InvocationRequest) error {
	flags := assembler.flags
	resolvePath := assembler.pathResolver.Resolve

	overrideFlagValue(assembler.flagSet, pomFileFlagNameConstant, &request.PomFile, resolvePath(flags.pomFile))
	overrideFlagValue(assembler.flagSet, pomFileNameFlagNameConstant, &request.PomFileName, strings.TrimSpace(flags.pomFileName))
	overrideFlagValue(assembler.flagSet, baseDirectoryFlagNameConstant, &request.BaseDirectory, resolvePath(flags.baseDirectory))
	overrideFlagValue(assembler.flagSet, mavenHomeFlagNameConstant, &request.MavenHome, resolvePath(flags.mavenHome))
	overrideFlagValue(assembler.flagSet, localRepositoryFlagNameConstant, &request.LocalRepositoryDirectory, resolvePath(flags.localRepository))
	overrideFlagValue(assembler.flagSet, javaHomeFlagNameConstant, &request.JavaHome, resolvePath(flags.javaHome))
	overrideFlagValue(assembler.flagSet, mavenOptionsFlagNameConstant, &request.MavenOptions, flags.mavenOptions)
	overrideFlagValue(assembler.flagSet, userSettingsFlagNameConstant, &request.UserSettingsFile, resolvePath(flags.userSettings))
	overrideFlagValue(assembler.flagSet, globalSettingsFlagNameConstant, &request.GlobalSettingsFile, resolvePath(flags.globalSettings))
	overrideFlagValue(assembler.flagSet, toolchainsFlagNameConstant, &request.ToolchainsFile, resolvePath(flags.toolchains))
	overrideFlagValue(assembler.flagSet, resumeFromFlagNameConstant, &request.ResumeFrom, strings.TrimSpace(flags.resumeFrom))
	overrideFlagValue(assembler.flagSet, builderFlagNameConstant, &request.Builder, strings.TrimSpace(flags.builder))
	overrideFlagValue(assembler.flagSet, threadsFlagNameConstant, &request.Threads, strings.TrimSpace(flags.threads))

	mavenExecutable := strings.TrimSpace(flags.mavenExecutable)
	if strings.ContainsAny(mavenExecutable, `/\`) {
		mavenExecutable = resolvePath(mavenExecutable)
	}
	overrideFlagValue(assembler.flagSet, mavenExecutableFlagNameConstant, &request.MavenExecutable, mavenExecutable)

	overrideFlagValue(assembler.flagSet, batchModeFlagNameConstant, &request.BatchMode, flags.batchMode)
	overrideFlagValue(assembler.flagSet, offlineFlagNameConstant, &request.Offline, flags.offline)
	overrideFlagValue(assembler.flagSet, updateSnapshotsFlagNameConstant, &request.UpdateSnapshots, flags.updateSnapshots)
	overrideFlagValue(assembler.flagSet, debugFlagNameConstant, &request.Debug, flags.debug)
	overrideFlagValue(assembler.flagSet, showErrorsFlagNameConstant, &request.ShowErrors, flags.showErrors)
	overrideFlagValue(assembler.flagSet, quietFlagNameConstant, &request.Quiet, flags.quiet)
	overrideFlagValue(assembler.flagSet, nonRecursiveFlagNameConstant, &request.NonRecursive, flags.nonRecursive)
	overrideFlagValue(assembler.flagSet, showVersionFlagNameConstant, &request.ShowVersion, flags.showVersion)
	overrideFlagValue(assembler.flagSet, noTransferProgressFlagNameConstant, &request.NoTransferProgress, flags.noTransferProgress)
	overrideFlagValue(assembler.flagSet, ignoreTransitiveRepositoriesFlagNameConstant, &request.IgnoreTransitiveRepositories, flags.ignoreTransitiveRepositories)
	overrideFlagValue(assembler.flagSet, alsoMakeFlagNameConstant, &request.AlsoMake, flags.alsoMake)
	overrideFlagValue(assembler.flagSet, alsoMakeDependentsFlagNameConstant, &request.AlsoMakeDependents, flags.alsoMakeDependents)

	if assembler.flagSet.Changed(inheritEnvironmentFlagNameConstant) {
		inheritEnvironment := flags.inheritEnvironment
		request.ShellEnvironmentInherited = &inheritEnvironment
	}

	if assembler.flagSet.Changed(updateSnapshotsPolicyFlagNameConstant) {
		request.UpdateSnapshotsPolicy = invoker.UpdateSnapshotsPolicy(flags.updateSnapshotsPolicy)
	}
	if assembler.flagSet.Changed(globalChecksumPolicyFlagNameConstant) {
		request.GlobalChecksumPolicy = invoker.ChecksumPolicy(flags.globalChecksumPolicy)
	}
	if assembler.flagSet.Changed(reactorFailureBehaviorFlagNameConstant) {
		request.ReactorFailureBehavior = invoker.ReactorFailureBehavior(flags.reactorFailureBehavior)
	}

	if assembler.flagSet.Changed(projectsFlagNameConstant) {
		request.Projects = trimValues(flags.projects)
	}
	if assembler.flagSet.Changed(profilesFlagNameConstant) {
		request.Profiles = trimValues(flags.profiles)
	}

	for _, definition := range flags.properties {
		propertyName, propertyValue, found := strings.Cut(definition, assignmentSeparatorConstant)
		propertyName = strings.TrimSpace(propertyName)
		if len(propertyName) == 0 {
			return fmt.Errorf(propertyAssignmentErrorTemplateConstant, definition)
		}
		if !found {
			propertyValue = implicitPropertyValueConstant
		}
		request.SetProperty(propertyName, propertyValue)
	}
	return nil
}

func overrideFlagValue[T any](flagSet *pflag.FlagSet, flagName string, target *T, value T) {
	if flagSet.Changed(flagName) {
		*target = value
	}
}

func fillString(target *string, fallback string) {
	if len(*target) == 0 {
		*target = fallback
	}
}
