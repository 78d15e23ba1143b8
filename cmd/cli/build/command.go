package build

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mvninvoker/internal/execshell"
	"github.com/temirov/mvninvoker/internal/invoker"
	"github.com/temirov/mvninvoker/internal/logging"
	"github.com/temirov/mvninvoker/internal/ui"
	"github.com/temirov/mvninvoker/internal/utils"
	flagutils "github.com/temirov/mvninvoker/internal/utils/flags"
	pathutils "github.com/temirov/mvninvoker/internal/utils/path"
)

const (
	commandUseConstant              = "build [maven arguments...]"
	commandShortDescriptionConstant = "Run a Maven build"
	commandLongDescriptionConstant  = "build resolves the Maven installation, project and options, then launches Maven with the assembled command line. Positional arguments (goals, phases, plugin invocations) are passed to Maven unchanged; place Maven options after -- so they are not parsed here."

	requestFileFlagNameConstant                   = "request"
	requestFileFlagUsageConstant                  = "Load the invocation request from a YAML file"
	pomFileFlagNameConstant                       = "file"
	pomFileFlagShorthandConstant                  = "f"
	pomFileFlagUsageConstant                      = "POM file to build"
	pomFileNameFlagNameConstant                   = "pom-name"
	pomFileNameFlagUsageConstant                  = "POM file name looked up in the base directory"
	baseDirectoryFlagNameConstant                 = "base-directory"
	baseDirectoryFlagShorthandConstant            = "C"
	baseDirectoryFlagUsageConstant                = "Project base directory"
	mavenHomeFlagNameConstant                     = "maven-home"
	mavenHomeFlagUsageConstant                    = "Maven installation directory"
	mavenExecutableFlagNameConstant               = "maven-executable"
	mavenExecutableFlagUsageConstant              = "Maven launcher name or path"
	localRepositoryFlagNameConstant               = "local-repository"
	localRepositoryFlagUsageConstant              = "Local artifact repository directory"
	javaHomeFlagNameConstant                      = "java-home"
	javaHomeFlagUsageConstant                     = "JAVA_HOME for the build"
	mavenOptionsFlagNameConstant                  = "maven-opts"
	mavenOptionsFlagUsageConstant                 = "MAVEN_OPTS for the build"
	userSettingsFlagNameConstant                  = "settings"
	userSettingsFlagShorthandConstant             = "s"
	userSettingsFlagUsageConstant                 = "User settings file"
	globalSettingsFlagNameConstant                = "global-settings"
	globalSettingsFlagUsageConstant               = "Global settings file"
	toolchainsFlagNameConstant                    = "toolchains"
	toolchainsFlagUsageConstant                   = "Toolchains file"
	batchModeFlagNameConstant                     = "batch-mode"
	batchModeFlagShorthandConstant                = "B"
	batchModeFlagUsageConstant                    = "Run Maven non-interactively"
	offlineFlagNameConstant                       = "offline"
	offlineFlagShorthandConstant                  = "o"
	offlineFlagUsageConstant                      = "Work offline"
	updateSnapshotsFlagNameConstant               = "update-snapshots"
	updateSnapshotsFlagShorthandConstant          = "U"
	updateSnapshotsFlagUsageConstant              = "Force a check for updated snapshots"
	debugFlagNameConstant                         = "maven-debug"
	debugFlagShorthandConstant                    = "X"
	debugFlagUsageConstant                        = "Produce Maven debug output"
	showErrorsFlagNameConstant                    = "errors"
	showErrorsFlagShorthandConstant               = "e"
	showErrorsFlagUsageConstant                   = "Produce execution error messages"
	quietFlagNameConstant                         = "quiet"
	quietFlagShorthandConstant                    = "q"
	quietFlagUsageConstant                        = "Only show Maven errors"
	nonRecursiveFlagNameConstant                  = "non-recursive"
	nonRecursiveFlagShorthandConstant             = "N"
	nonRecursiveFlagUsageConstant                 = "Do not recurse into sub-projects"
	showVersionFlagNameConstant                   = "show-version"
	showVersionFlagShorthandConstant              = "V"
	showVersionFlagUsageConstant                  = "Display Maven version information before building"
	noTransferProgressFlagNameConstant            = "no-transfer-progress"
	noTransferProgressFlagUsageConstant           = "Do not display transfer progress"
	ignoreTransitiveRepositoriesFlagNameConstant  = "ignore-transitive-repositories"
	ignoreTransitiveRepositoriesFlagUsageConstant = "Ignore repositories declared by dependencies"
	alsoMakeFlagNameConstant                      = "also-make"
	alsoMakeFlagUsageConstant                     = "Also build projects required by the selected projects"
	alsoMakeDependentsFlagNameConstant            = "also-make-dependents"
	alsoMakeDependentsFlagUsageConstant           = "Also build projects that depend on the selected projects"
	inheritEnvironmentFlagNameConstant            = "inherit-environment"
	inheritEnvironmentFlagUsageConstant           = "Pass the current environment to Maven"
	updateSnapshotsPolicyFlagNameConstant         = "update-snapshots-policy"
	updateSnapshotsPolicyFlagUsageConstant        = "Snapshot update policy"
	globalChecksumPolicyFlagNameConstant          = "checksum-policy"
	globalChecksumPolicyFlagUsageConstant         = "Checksum mismatch policy"
	reactorFailureBehaviorFlagNameConstant        = "reactor-failure"
	reactorFailureBehaviorFlagUsageConstant       = "Reactor failure behavior"
	projectsFlagNameConstant                      = "projects"
	projectsFlagUsageConstant                     = "Reactor projects to build (comma separated or repeatable)"
	resumeFromFlagNameConstant                    = "resume-from"
	resumeFromFlagUsageConstant                   = "Resume the reactor from this project"
	builderFlagNameConstant                       = "builder"
	builderFlagShorthandConstant                  = "b"
	builderFlagUsageConstant                      = "Build strategy id"
	threadsFlagNameConstant                       = "threads"
	threadsFlagShorthandConstant                  = "T"
	threadsFlagUsageConstant                      = "Thread count, for example 4 or 1C"
	profilesFlagNameConstant                      = "activate-profiles"
	profilesFlagShorthandConstant                 = "P"
	profilesFlagUsageConstant                     = "Profiles to activate (comma separated or repeatable)"
	propertiesFlagNameConstant                    = "define"
	propertiesFlagShorthandConstant               = "D"
	propertiesFlagUsageConstant                   = "System property NAME=VALUE (repeatable)"
	environmentFlagNameConstant                   = "env"
	environmentFlagUsageConstant                  = "Environment variable NAME=VALUE for Maven (repeatable)"
	environmentFilesFlagNameConstant              = "env-file"
	environmentFilesFlagUsageConstant             = "Dotenv file with environment variables for Maven (repeatable)"

	dryRunWorkingDirectoryTemplateConstant = "working directory: %s\n"
	dryRunEnvironmentTemplateConstant      = "environment: %s\n"
	dryRunCommandTemplateConstant          = "command: %s\n"
	executionErrorTemplateConstant         = "unable to run maven: %w"
	executorCreationErrorTemplateConstant  = "unable to construct command executor: %w"
	buildFailedErrorTemplateConstant       = "maven build failed with exit code %d"
	lineTerminatorConstant                 = "\n"
)

// LoggerProvider yields the diagnostic logger configured by the root command.
type LoggerProvider func() *zap.Logger

// BuildFailedError reports a Maven process that ran and exited with a non-zero code.
type BuildFailedError struct {
	ExitCode int
}

// Error describes the failed build.
func (buildFailedError BuildFailedError) Error() string {
	return fmt.Sprintf(buildFailedErrorTemplateConstant, buildFailedError.ExitCode)
}

// ExitStatus exposes the Maven exit code for the process exit status.
func (buildFailedError BuildFailedError) ExitStatus() int {
	return buildFailedError.ExitCode
}

// CommandBuilder assembles the build command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	// LogLevelProvider returns the configured log level used as the builder logger threshold.
	LogLevelProvider func() string
	// CommandExecutor replaces the operating system executor when set.
	CommandExecutor     invoker.CommandExecutor
	BuilderDependencies invoker.BuilderDependencies
}

// Build constructs the build command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flags := &requestFlags{}
	defaults := DefaultCommandConfiguration()

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
	}

	flagSet := command.Flags()
	flagSet.SortFlags = false
	flagSet.StringVar(&flags.requestFile, requestFileFlagNameConstant, "", requestFileFlagUsageConstant)
	flagSet.StringVarP(&flags.pomFile, pomFileFlagNameConstant, pomFileFlagShorthandConstant, "", pomFileFlagUsageConstant)
	flagSet.StringVar(&flags.pomFileName, pomFileNameFlagNameConstant, "", pomFileNameFlagUsageConstant)
	flagSet.StringVarP(&flags.baseDirectory, baseDirectoryFlagNameConstant, baseDirectoryFlagShorthandConstant, "", baseDirectoryFlagUsageConstant)
	flagSet.StringVar(&flags.mavenHome, mavenHomeFlagNameConstant, "", mavenHomeFlagUsageConstant)
	flagSet.StringVar(&flags.mavenExecutable, mavenExecutableFlagNameConstant, "", mavenExecutableFlagUsageConstant)
	flagSet.StringVar(&flags.localRepository, localRepositoryFlagNameConstant, "", localRepositoryFlagUsageConstant)
	flagSet.StringVar(&flags.javaHome, javaHomeFlagNameConstant, "", javaHomeFlagUsageConstant)
	flagSet.StringVar(&flags.mavenOptions, mavenOptionsFlagNameConstant, "", mavenOptionsFlagUsageConstant)
	flagSet.StringVarP(&flags.userSettings, userSettingsFlagNameConstant, userSettingsFlagShorthandConstant, "", userSettingsFlagUsageConstant)
	flagSet.StringVar(&flags.globalSettings, globalSettingsFlagNameConstant, "", globalSettingsFlagUsageConstant)
	flagSet.StringVar(&flags.toolchains, toolchainsFlagNameConstant, "", toolchainsFlagUsageConstant)

	flagutils.AddToggleFlag(flagSet, &flags.batchMode, batchModeFlagNameConstant, batchModeFlagShorthandConstant, defaults.BatchMode, batchModeFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.offline, offlineFlagNameConstant, offlineFlagShorthandConstant, false, offlineFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.updateSnapshots, updateSnapshotsFlagNameConstant, updateSnapshotsFlagShorthandConstant, false, updateSnapshotsFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.debug, debugFlagNameConstant, debugFlagShorthandConstant, false, debugFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.showErrors, showErrorsFlagNameConstant, showErrorsFlagShorthandConstant, defaults.ShowErrors, showErrorsFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.quiet, quietFlagNameConstant, quietFlagShorthandConstant, false, quietFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.nonRecursive, nonRecursiveFlagNameConstant, nonRecursiveFlagShorthandConstant, false, nonRecursiveFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.showVersion, showVersionFlagNameConstant, showVersionFlagShorthandConstant, false, showVersionFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.noTransferProgress, noTransferProgressFlagNameConstant, "", defaults.NoTransferProgress, noTransferProgressFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.ignoreTransitiveRepositories, ignoreTransitiveRepositoriesFlagNameConstant, "", false, ignoreTransitiveRepositoriesFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.alsoMake, alsoMakeFlagNameConstant, "", false, alsoMakeFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.alsoMakeDependents, alsoMakeDependentsFlagNameConstant, "", false, alsoMakeDependentsFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flags.inheritEnvironment, inheritEnvironmentFlagNameConstant, "", defaults.InheritEnvironment, inheritEnvironmentFlagUsageConstant)

	flagutils.AddChoiceFlag(flagSet, &flags.updateSnapshotsPolicy, updateSnapshotsPolicyFlagNameConstant, string(defaults.UpdateSnapshotsPolicy), invoker.UpdateSnapshotsPolicyChoices(), updateSnapshotsPolicyFlagUsageConstant)
	flagutils.AddChoiceFlag(flagSet, &flags.globalChecksumPolicy, globalChecksumPolicyFlagNameConstant, string(defaults.GlobalChecksumPolicy), invoker.ChecksumPolicyChoices(), globalChecksumPolicyFlagUsageConstant)
	flagutils.AddChoiceFlag(flagSet, &flags.reactorFailureBehavior, reactorFailureBehaviorFlagNameConstant, string(invoker.ReactorFailureBehaviorFailFast), invoker.ReactorFailureBehaviorChoices(), reactorFailureBehaviorFlagUsageConstant)

	flagSet.StringSliceVar(&flags.projects, projectsFlagNameConstant, nil, projectsFlagUsageConstant)
	flagSet.StringVar(&flags.resumeFrom, resumeFromFlagNameConstant, "", resumeFromFlagUsageConstant)
	flagSet.StringVarP(&flags.builder, builderFlagNameConstant, builderFlagShorthandConstant, "", builderFlagUsageConstant)
	flagSet.StringVarP(&flags.threads, threadsFlagNameConstant, threadsFlagShorthandConstant, "", threadsFlagUsageConstant)
	flagSet.StringSliceVarP(&flags.profiles, profilesFlagNameConstant, profilesFlagShorthandConstant, nil, profilesFlagUsageConstant)
	flagSet.StringArrayVarP(&flags.properties, propertiesFlagNameConstant, propertiesFlagShorthandConstant, nil, propertiesFlagUsageConstant)
	flagSet.StringArrayVar(&flags.environment, environmentFlagNameConstant, nil, environmentFlagUsageConstant)
	flagSet.StringArrayVar(&flags.environmentFiles, environmentFilesFlagNameConstant, nil, environmentFilesFlagUsageConstant)

	executionFlags := flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.DefaultExecutionFlagDefinitions())

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, flags, executionFlags)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flags *requestFlags, executionFlags *flagutils.ExecutionFlagValues) error {
	contextAccessor := utils.NewCommandContextAccessor()
	configurationResolver := pathutils.NewPathResolver()
	if configurationDirectory, available := contextAccessor.ConfigurationDirectory(command.Context()); available {
		configurationResolver = configurationResolver.Anchored(configurationDirectory)
	}
	configuration := builder.resolveConfiguration(configurationResolver)

	assembler := requestAssembler{
		configuration: configuration,
		flags:         flags,
		flagSet:       command.Flags(),
		pathResolver:  pathutils.NewPathResolver(),
	}
	request, assembleError := assembler.assemble(arguments, executionFlags.Timeout, command.Flags().Changed(flagutils.TimeoutFlagName))
	if assembleError != nil {
		return assembleError
	}

	commandLineBuilder := invoker.NewCommandLineBuilderWithDependencies(builder.BuilderDependencies)
	commandLineBuilder.SetLogger(builder.newBuilderLogger(command.ErrOrStderr()))
	commandLineBuilder.SetMavenHome(configuration.MavenHome)
	commandLineBuilder.SetMavenExecutable(configuration.MavenExecutable)
	commandLineBuilder.SetBaseDirectory(configuration.BaseDirectory)
	commandLineBuilder.SetLocalRepositoryDirectory(configuration.LocalRepository)

	if executionFlags.DryRun {
		invocation, buildError := commandLineBuilder.Build(request)
		if buildError != nil {
			return buildError
		}
		return writeInvocation(command.OutOrStdout(), invocation)
	}

	executor, executorError := builder.resolveExecutor()
	if executorError != nil {
		return executorError
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	errorWriter := utils.NewFlushingWriter(command.ErrOrStderr())
	if request.OutputHandler == nil {
		request.OutputHandler = lineWriter(outputWriter)
	}
	if request.ErrorHandler == nil {
		request.ErrorHandler = lineWriter(errorWriter)
	}
	if !request.BatchMode {
		request.InputStream = command.InOrStdin()
	}

	result, invokeError := invoker.NewInvoker(commandLineBuilder, executor).Execute(command.Context(), request)
	if invokeError != nil {
		return invokeError
	}
	if result.ExecutionError != nil {
		return fmt.Errorf(executionErrorTemplateConstant, result.ExecutionError)
	}
	if !result.Succeeded() {
		return BuildFailedError{ExitCode: result.ExitCode}
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(resolver *pathutils.PathResolver) CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize(resolver)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor() (invoker.CommandExecutor, error) {
	if builder.CommandExecutor != nil {
		return builder.CommandExecutor, nil
	}

	logger := builder.resolveLogger()
	executorOptions := []execshell.ShellExecutorOption{}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if creationError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, creationError)
	}
	return shellExecutor, nil
}

// newBuilderLogger creates the leveled logger that reports resolution details such as the chosen executable.
func (builder *CommandBuilder) newBuilderLogger(destination io.Writer) *logging.LeveledLogger {
	leveledLogger := logging.NewLeveledLogger(utils.NewFlushingWriter(destination))
	if builder.LogLevelProvider == nil {
		return leveledLogger
	}
	if threshold, parseError := logging.ParseLevel(builder.LogLevelProvider()); parseError == nil {
		leveledLogger.SetThreshold(threshold)
	}
	return leveledLogger
}

func writeInvocation(destination io.Writer, invocation invoker.Invocation) error {
	var writeErrors []error
	_, workingDirectoryError := fmt.Fprintf(destination, dryRunWorkingDirectoryTemplateConstant, invocation.WorkingDirectory)
	writeErrors = append(writeErrors, workingDirectoryError)
	for _, assignment := range invocation.EnvironmentAssignments() {
		_, environmentError := fmt.Fprintf(destination, dryRunEnvironmentTemplateConstant, assignment)
		writeErrors = append(writeErrors, environmentError)
	}
	_, commandError := fmt.Fprintf(destination, dryRunCommandTemplateConstant, invocation.String())
	writeErrors = append(writeErrors, commandError)
	return errors.Join(writeErrors...)
}

func lineWriter(destination io.Writer) invoker.OutputLineHandler {
	return func(line string) {
		_, _ = io.WriteString(destination, strings.TrimSuffix(line, lineTerminatorConstant)+lineTerminatorConstant)
	}
}
