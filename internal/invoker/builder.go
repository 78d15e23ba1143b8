package invoker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/mvninvoker/internal/logging"
)

const (
	defaultPomFileNameConstant = "pom.xml"

	propertyFlagConstant                     = "-D"
	profilesFlagConstant                     = "-P"
	pomFileFlagConstant                      = "-f"
	projectsFlagConstant                     = "-pl"
	alsoMakeFlagConstant                     = "-am"
	alsoMakeDependentsFlagConstant           = "-amd"
	resumeFromFlagConstant                   = "-rf"
	failAtEndFlagConstant                    = "-fae"
	failNeverFlagConstant                    = "-fn"
	batchModeFlagConstant                    = "-B"
	offlineFlagConstant                      = "-o"
	updateSnapshotsFlagConstant              = "-U"
	noSnapshotUpdatesFlagConstant            = "-nsu"
	debugFlagConstant                        = "-X"
	showErrorsFlagConstant                   = "-e"
	quietFlagConstant                        = "-q"
	nonRecursiveFlagConstant                 = "-N"
	showVersionFlagConstant                  = "-V"
	strictChecksumFlagConstant               = "-C"
	laxChecksumFlagConstant                  = "-c"
	noTransferProgressFlagConstant           = "-ntp"
	ignoreTransitiveRepositoriesFlagConstant = "-itr"
	builderFlagConstant                      = "-b"
	userSettingsFlagConstant                 = "-s"
	globalSettingsFlagConstant               = "-gs"
	toolchainsFlagConstant                   = "-t"
	threadsFlagConstant                      = "-T"

	listJoinSeparatorConstant              = ","
	propertyAssignmentConstant             = "="
	localRepositoryPropertyConstant        = "maven.repo.local"
	mavenHomeEnvironmentConstant           = "MAVEN_HOME"
	legacyMavenHomeEnvironmentConstant     = "M2_HOME"
	javaHomeEnvironmentConstant            = "JAVA_HOME"
	mavenOptionsEnvironmentConstant        = "MAVEN_OPTS"
	baseDirectorySettingConstant           = "base directory"
	pomFileSettingConstant                 = "pom file"
	localRepositorySettingConstant         = "local repository"
	mavenExecutableSettingConstant         = "maven executable"
	userSettingsSettingConstant            = "user settings file"
	globalSettingsSettingConstant          = "global settings file"
	toolchainsSettingConstant              = "toolchains file"
	usingMavenHomeTemplateConstant         = "Using maven.home of: '%s'."
	usingExecutableTemplateConstant        = "Using maven executable: '%s'."
	usingWorkingDirTemplateConstant        = "Using working directory: '%s'."
	executableSearchFailedTemplateConstant = "Unable to locate %s in %s."
	commandPathLocationLabelConstant       = "PATH"
)

// CommandLineBuilder produces one Invocation per InvocationRequest. Request values take precedence
// over the builder defaults configured through the setters.
//
// A builder records the last resolved base directory, maven home and executable, so concurrent
// Build calls on the same builder require external synchronization.
type CommandLineBuilder struct {
	logger                   Logger
	mavenHome                string
	baseDirectory            string
	localRepositoryDirectory string
	mavenExecutable          string
	dependencies             BuilderDependencies

	resolvedBaseDirectory string
	resolvedMavenHome     string
	resolvedExecutable    string
}

// NewCommandLineBuilder constructs a builder backed by the operating system and a standard output logger.
func NewCommandLineBuilder() *CommandLineBuilder {
	return NewCommandLineBuilderWithDependencies(BuilderDependencies{})
}

// NewCommandLineBuilderWithDependencies constructs a builder with custom platform seams.
func NewCommandLineBuilderWithDependencies(dependencies BuilderDependencies) *CommandLineBuilder {
	return &CommandLineBuilder{
		logger:       logging.NewStandardOutputLogger(),
		dependencies: dependencies.withDefaults(),
	}
}

// SetLogger replaces the progress logger. A nil logger makes Build fail.
func (builder *CommandLineBuilder) SetLogger(logger Logger) {
	builder.logger = logger
}

// Logger returns the configured progress logger.
func (builder *CommandLineBuilder) Logger() Logger {
	return builder.logger
}

// SetMavenHome sets the default Maven installation directory.
func (builder *CommandLineBuilder) SetMavenHome(mavenHome string) {
	builder.mavenHome = mavenHome
}

// SetBaseDirectory sets the default base directory.
func (builder *CommandLineBuilder) SetBaseDirectory(baseDirectory string) {
	builder.baseDirectory = baseDirectory
}

// SetLocalRepositoryDirectory sets the default local repository directory.
func (builder *CommandLineBuilder) SetLocalRepositoryDirectory(localRepositoryDirectory string) {
	builder.localRepositoryDirectory = localRepositoryDirectory
}

// SetMavenExecutable sets the default executable override.
func (builder *CommandLineBuilder) SetMavenExecutable(mavenExecutable string) {
	builder.mavenExecutable = mavenExecutable
}

// ResolvedBaseDirectory returns the base directory computed by the last resolution.
func (builder *CommandLineBuilder) ResolvedBaseDirectory() string {
	return builder.resolvedBaseDirectory
}

// ResolvedMavenHome returns the maven home used by the last executable resolution, if any.
func (builder *CommandLineBuilder) ResolvedMavenHome() string {
	return builder.resolvedMavenHome
}

// ResolvedExecutable returns the executable computed by the last resolution.
func (builder *CommandLineBuilder) ResolvedExecutable() string {
	return builder.resolvedExecutable
}

// CheckRequiredState verifies that the builder has everything Build needs.
func (builder *CommandLineBuilder) CheckRequiredState() error {
	if isMissingLogger(builder.logger) {
		return IllegalStateError{Cause: ErrLoggerNotConfigured}
	}
	return nil
}

// Build resolves the request into an Invocation. No partial invocation is returned on failure.
func (builder *CommandLineBuilder) Build(request InvocationRequest) (Invocation, error) {
	if stateError := builder.CheckRequiredState(); stateError != nil {
		return Invocation{}, stateError
	}

	baseDirectory, baseDirectoryError := builder.ResolveBaseDirectory(request)
	if baseDirectoryError != nil {
		return Invocation{}, baseDirectoryError
	}

	invocation := Invocation{Arguments: []string{}, Environment: map[string]string{}}

	workingDirectory, pomError := builder.resolvePomFileAndWorkingDirectory(request, baseDirectory, &invocation)
	if pomError != nil {
		return Invocation{}, pomError
	}
	invocation.WorkingDirectory = workingDirectory
	builder.logger.Debug(fmt.Sprintf(usingWorkingDirTemplateConstant, workingDirectory), nil)

	executable, executableError := builder.ResolveExecutable(request)
	if executableError != nil {
		return Invocation{}, executableError
	}
	invocation.Executable = executable

	if localRepositoryError := builder.SetLocalRepository(request, &invocation); localRepositoryError != nil {
		return Invocation{}, localRepositoryError
	}

	builder.SetFlags(request, &invocation)
	builder.SetReactorBehavior(request, &invocation)

	if settingsError := builder.SetSettingsLocation(request, &invocation); settingsError != nil {
		return Invocation{}, settingsError
	}
	if toolchainsError := builder.SetToolchainsLocation(request, &invocation); toolchainsError != nil {
		return Invocation{}, toolchainsError
	}

	builder.SetProperties(request, &invocation)
	builder.SetProfiles(request, &invocation)
	builder.SetThreads(request, &invocation)
	builder.SetGoals(request, &invocation)
	builder.SetArguments(request, &invocation)
	builder.SetEnvironment(request, &invocation)

	return invocation, nil
}

// ResolveBaseDirectory returns the canonical base directory: the request value, the builder
// default, the parent of the request POM file, or the process working directory, in that order.
func (builder *CommandLineBuilder) ResolveBaseDirectory(request InvocationRequest) (string, error) {
	fileSystem := builder.dependencies.FileSystem

	baseDirectory := resolveSetting(request.BaseDirectory, builder.baseDirectory, "")
	if len(baseDirectory) == 0 && len(request.PomFile) > 0 {
		baseDirectory = filepath.Dir(request.PomFile)
	}
	if len(baseDirectory) == 0 {
		workingDirectory, workingDirectoryError := fileSystem.Getwd()
		if workingDirectoryError != nil {
			return "", ConfigurationError{Setting: baseDirectorySettingConstant, Cause: workingDirectoryError}
		}
		baseDirectory = workingDirectory
	}

	canonicalBaseDirectory, canonicalError := canonicalizePath(fileSystem, baseDirectory)
	if canonicalError != nil {
		return "", ConfigurationError{Setting: baseDirectorySettingConstant, Path: baseDirectory, Cause: canonicalError}
	}

	builder.resolvedBaseDirectory = canonicalBaseDirectory
	return canonicalBaseDirectory, nil
}

// resolvePomFileAndWorkingDirectory appends -f when Maven would not find the requested POM on its
// own and returns the process working directory. An explicit POM never moves the working directory
// away from the base directory; without a base directory the base already is the POM's parent.
func (builder *CommandLineBuilder) resolvePomFileAndWorkingDirectory(request InvocationRequest, baseDirectory string, invocation *Invocation) (string, error) {
	fileSystem := builder.dependencies.FileSystem

	workingDirectory := baseDirectory
	pomFileName := request.PomFileName
	if isRegularFile(fileSystem, baseDirectory) {
		workingDirectory = filepath.Dir(baseDirectory)
		pomFileName = filepath.Base(baseDirectory)
		baseDirectory = workingDirectory
	}

	if len(request.PomFile) > 0 {
		pomFilePath := request.PomFile
		explicitBaseDirectory := resolveSetting(request.BaseDirectory, builder.baseDirectory, "")
		if !filepath.IsAbs(pomFilePath) && len(explicitBaseDirectory) > 0 {
			pomFilePath = filepath.Join(baseDirectory, pomFilePath)
		}

		canonicalPomFile, canonicalError := canonicalizePath(fileSystem, pomFilePath)
		if canonicalError != nil {
			return "", ConfigurationError{Setting: pomFileSettingConstant, Path: request.PomFile, Cause: canonicalError}
		}

		pomDirectory := filepath.Dir(canonicalPomFile)
		pomSimpleName := filepath.Base(canonicalPomFile)
		residesInBaseDirectory := pomDirectory == baseDirectory
		if pomSimpleName != defaultPomFileNameConstant || !residesInBaseDirectory {
			if residesInBaseDirectory {
				invocation.appendArguments(pomFileFlagConstant, pomSimpleName)
			} else {
				invocation.appendArguments(pomFileFlagConstant, canonicalPomFile)
			}
		}
		return workingDirectory, nil
	}

	if len(pomFileName) > 0 && pomFileName != defaultPomFileNameConstant {
		if isRegularFile(fileSystem, filepath.Join(baseDirectory, pomFileName)) {
			invocation.appendArguments(pomFileFlagConstant, pomFileName)
		}
	}
	return workingDirectory, nil
}

// ResolveExecutable locates the launcher. Precedence: request override, builder override, then the
// launcher script under the bin directory of the resolved maven home. Bare names are also searched
// on the process command path.
func (builder *CommandLineBuilder) ResolveExecutable(request InvocationRequest) (string, error) {
	fileSystem := builder.dependencies.FileSystem
	operatingSystemFamily := builder.dependencies.OperatingSystemFamily()

	executableOverride := resolveSetting(request.MavenExecutable, builder.mavenExecutable, "")
	executableName := resolveSetting(executableOverride, "", defaultExecutableNameConstant)

	switch {
	case filepath.IsAbs(executableName):
		return builder.locateExecutableIn(filepath.Dir(executableName), filepath.Base(executableName), operatingSystemFamily, executableName)
	case !isBareExecutableName(executableName):
		searchDirectory, baseDirectoryError := builder.ResolveBaseDirectory(request)
		if baseDirectoryError != nil {
			return "", baseDirectoryError
		}
		if isRegularFile(fileSystem, searchDirectory) {
			searchDirectory = filepath.Dir(searchDirectory)
		}
		relativeExecutable := filepath.Join(searchDirectory, executableName)
		return builder.locateExecutableIn(filepath.Dir(relativeExecutable), filepath.Base(relativeExecutable), operatingSystemFamily, relativeExecutable)
	}

	triedLocations := make([]string, 0, 2)
	mavenHome := resolveSetting(request.MavenHome, builder.mavenHome, builder.environmentMavenHome())
	if len(mavenHome) > 0 {
		canonicalMavenHome, canonicalError := canonicalizePath(fileSystem, mavenHome)
		if canonicalError != nil {
			return "", ConfigurationError{Setting: mavenExecutableSettingConstant, Path: mavenHome, Cause: canonicalError}
		}
		builder.resolvedMavenHome = canonicalMavenHome
		builder.logger.Debug(fmt.Sprintf(usingMavenHomeTemplateConstant, canonicalMavenHome), nil)

		binDirectory := filepath.Join(canonicalMavenHome, mavenHomeBinDirectoryConstant)
		if executablePath, found := builder.findCandidate(binDirectory, executableName, operatingSystemFamily); found {
			return builder.recordExecutable(executablePath)
		}
		triedLocations = append(triedLocations, binDirectory)
	}

	for _, candidateName := range executableCandidateNames(operatingSystemFamily, executableName) {
		lookedUpPath, lookupError := builder.dependencies.ExecutableLookup(candidateName)
		if lookupError != nil || len(lookedUpPath) == 0 {
			continue
		}
		if !isRegularFile(fileSystem, lookedUpPath) {
			continue
		}
		return builder.recordExecutable(lookedUpPath)
	}
	triedLocations = append(triedLocations, commandPathLocationLabelConstant)

	builder.logger.Debug(fmt.Sprintf(executableSearchFailedTemplateConstant, executableName, strings.Join(triedLocations, listJoinSeparatorConstant)), nil)
	return "", ConfigurationError{Setting: mavenExecutableSettingConstant, Path: executableName, Cause: ErrExecutableNotFound}
}

func (builder *CommandLineBuilder) locateExecutableIn(directory string, executableName string, operatingSystemFamily OperatingSystemFamily, reportedPath string) (string, error) {
	if executablePath, found := builder.findCandidate(directory, executableName, operatingSystemFamily); found {
		return builder.recordExecutable(executablePath)
	}
	return "", ConfigurationError{Setting: mavenExecutableSettingConstant, Path: reportedPath, Cause: ErrExecutableNotFound}
}

func (builder *CommandLineBuilder) findCandidate(directory string, executableName string, operatingSystemFamily OperatingSystemFamily) (string, bool) {
	for _, candidateName := range executableCandidateNames(operatingSystemFamily, executableName) {
		candidatePath := filepath.Join(directory, candidateName)
		if isRegularFile(builder.dependencies.FileSystem, candidatePath) {
			return candidatePath, true
		}
	}
	return "", false
}

func (builder *CommandLineBuilder) recordExecutable(executablePath string) (string, error) {
	canonicalExecutable, canonicalError := canonicalizePath(builder.dependencies.FileSystem, executablePath)
	if canonicalError != nil {
		return "", ConfigurationError{Setting: mavenExecutableSettingConstant, Path: executablePath, Cause: canonicalError}
	}
	builder.resolvedExecutable = canonicalExecutable
	builder.logger.Debug(fmt.Sprintf(usingExecutableTemplateConstant, canonicalExecutable), nil)
	return canonicalExecutable, nil
}

func (builder *CommandLineBuilder) environmentMavenHome() string {
	for _, environmentName := range []string{mavenHomeEnvironmentConstant, legacyMavenHomeEnvironmentConstant} {
		if environmentValue, present := builder.dependencies.EnvironmentLookup(environmentName); present && len(strings.TrimSpace(environmentValue)) > 0 {
			return environmentValue
		}
	}
	return ""
}

// SetLocalRepository appends -D maven.repo.local=<path> when a local repository is configured.
// A path that denotes a regular file is rejected and the invocation is left untouched. A missing
// directory is passed through since Maven creates it on first use.
func (builder *CommandLineBuilder) SetLocalRepository(request InvocationRequest, invocation *Invocation) error {
	fileSystem := builder.dependencies.FileSystem

	localRepository := resolveSetting(request.LocalRepositoryDirectory, builder.localRepositoryDirectory, "")
	if len(localRepository) == 0 {
		return nil
	}

	canonicalLocalRepository, canonicalError := canonicalizePath(fileSystem, localRepository)
	if canonicalError != nil {
		return ConfigurationError{Setting: localRepositorySettingConstant, Path: localRepository, Cause: canonicalError}
	}

	if isRegularFile(fileSystem, canonicalLocalRepository) {
		return ConfigurationError{Setting: localRepositorySettingConstant, Path: canonicalLocalRepository, Cause: ErrLocalRepositoryIsFile}
	}

	invocation.appendArguments(propertyFlagConstant, localRepositoryPropertyConstant+propertyAssignmentConstant+canonicalLocalRepository)
	return nil
}

// SetFlags appends the builder id, then the boolean and policy flags, in their fixed order.
func (builder *CommandLineBuilder) SetFlags(request InvocationRequest, invocation *Invocation) {
	if len(request.Builder) > 0 {
		invocation.appendArguments(builderFlagConstant, request.Builder)
	}

	if request.BatchMode {
		invocation.appendArguments(batchModeFlagConstant)
	}

	if request.Offline {
		invocation.appendArguments(offlineFlagConstant)
	}

	switch {
	case request.UpdateSnapshots || request.UpdateSnapshotsPolicy == UpdateSnapshotsPolicyAlways:
		invocation.appendArguments(updateSnapshotsFlagConstant)
	case request.UpdateSnapshotsPolicy == UpdateSnapshotsPolicyNever:
		invocation.appendArguments(noSnapshotUpdatesFlagConstant)
	}

	// -X already reports errors.
	if request.Debug {
		invocation.appendArguments(debugFlagConstant)
	} else if request.ShowErrors {
		invocation.appendArguments(showErrorsFlagConstant)
	}

	if request.Quiet {
		invocation.appendArguments(quietFlagConstant)
	}

	if request.NonRecursive {
		invocation.appendArguments(nonRecursiveFlagConstant)
	}

	if request.ShowVersion {
		invocation.appendArguments(showVersionFlagConstant)
	}

	switch request.GlobalChecksumPolicy {
	case ChecksumPolicyFail:
		invocation.appendArguments(strictChecksumFlagConstant)
	case ChecksumPolicyWarn:
		invocation.appendArguments(laxChecksumFlagConstant)
	}

	if request.NoTransferProgress {
		invocation.appendArguments(noTransferProgressFlagConstant)
	}

	if request.IgnoreTransitiveRepositories {
		invocation.appendArguments(ignoreTransitiveRepositoriesFlagConstant)
	}
}

// SetReactorBehavior appends project selection, resume and failure propagation flags.
// -am and -amd are only meaningful with -pl and are dropped without it.
func (builder *CommandLineBuilder) SetReactorBehavior(request InvocationRequest, invocation *Invocation) {
	if len(request.Projects) > 0 {
		invocation.appendArguments(projectsFlagConstant, strings.Join(request.Projects, listJoinSeparatorConstant))

		if request.AlsoMake {
			invocation.appendArguments(alsoMakeFlagConstant)
		}

		if request.AlsoMakeDependents {
			invocation.appendArguments(alsoMakeDependentsFlagConstant)
		}
	}

	if len(request.ResumeFrom) > 0 {
		invocation.appendArguments(resumeFromFlagConstant, request.ResumeFrom)
	}

	switch request.ReactorFailureBehavior {
	case ReactorFailureBehaviorFailAtEnd:
		invocation.appendArguments(failAtEndFlagConstant)
	case ReactorFailureBehaviorFailNever:
		invocation.appendArguments(failNeverFlagConstant)
	}
}

// SetSettingsLocation appends -s and -gs with canonical paths when settings files are configured.
func (builder *CommandLineBuilder) SetSettingsLocation(request InvocationRequest, invocation *Invocation) error {
	settingsArguments := make([]string, 0, 4)

	if len(request.UserSettingsFile) > 0 {
		canonicalUserSettings, canonicalError := canonicalizePath(builder.dependencies.FileSystem, request.UserSettingsFile)
		if canonicalError != nil {
			return ConfigurationError{Setting: userSettingsSettingConstant, Path: request.UserSettingsFile, Cause: canonicalError}
		}
		settingsArguments = append(settingsArguments, userSettingsFlagConstant, canonicalUserSettings)
	}

	if len(request.GlobalSettingsFile) > 0 {
		canonicalGlobalSettings, canonicalError := canonicalizePath(builder.dependencies.FileSystem, request.GlobalSettingsFile)
		if canonicalError != nil {
			return ConfigurationError{Setting: globalSettingsSettingConstant, Path: request.GlobalSettingsFile, Cause: canonicalError}
		}
		settingsArguments = append(settingsArguments, globalSettingsFlagConstant, canonicalGlobalSettings)
	}

	invocation.appendArguments(settingsArguments...)
	return nil
}

// SetToolchainsLocation appends -t with a canonical path when a toolchains file is configured.
func (builder *CommandLineBuilder) SetToolchainsLocation(request InvocationRequest, invocation *Invocation) error {
	if len(request.ToolchainsFile) == 0 {
		return nil
	}

	canonicalToolchains, canonicalError := canonicalizePath(builder.dependencies.FileSystem, request.ToolchainsFile)
	if canonicalError != nil {
		return ConfigurationError{Setting: toolchainsSettingConstant, Path: request.ToolchainsFile, Cause: canonicalError}
	}

	invocation.appendArguments(toolchainsFlagConstant, canonicalToolchains)
	return nil
}

// SetProperties appends -D key=value for every property in request order. Keys and values are
// passed through unquoted; each pair becomes a single argument.
func (builder *CommandLineBuilder) SetProperties(request InvocationRequest, invocation *Invocation) {
	for _, property := range request.Properties {
		invocation.appendArguments(propertyFlagConstant, property.Key+propertyAssignmentConstant+property.Value)
	}
}

// SetProfiles appends -P with the comma-joined profile list.
func (builder *CommandLineBuilder) SetProfiles(request InvocationRequest, invocation *Invocation) {
	if len(request.Profiles) == 0 {
		return
	}
	invocation.appendArguments(profilesFlagConstant, strings.Join(request.Profiles, listJoinSeparatorConstant))
}

// SetThreads appends -T with the thread expression.
func (builder *CommandLineBuilder) SetThreads(request InvocationRequest, invocation *Invocation) {
	if len(request.Threads) == 0 {
		return
	}
	invocation.appendArguments(threadsFlagConstant, request.Threads)
}

// SetGoals appends the goals unmodified.
//
// Deprecated: use SetArguments with InvocationRequest.Arguments.
func (builder *CommandLineBuilder) SetGoals(request InvocationRequest, invocation *Invocation) {
	invocation.appendArguments(request.Goals...)
}

// SetArguments appends the free-form arguments unmodified.
func (builder *CommandLineBuilder) SetArguments(request InvocationRequest, invocation *Invocation) {
	invocation.appendArguments(request.Arguments...)
}

// SetEnvironment exports JAVA_HOME and MAVEN_OPTS when set, then applies the request overrides.
func (builder *CommandLineBuilder) SetEnvironment(request InvocationRequest, invocation *Invocation) {
	if len(request.JavaHome) > 0 {
		invocation.setEnvironment(javaHomeEnvironmentConstant, request.JavaHome)
	}

	if len(request.MavenOptions) > 0 {
		invocation.setEnvironment(mavenOptionsEnvironmentConstant, request.MavenOptions)
	}

	for environmentName, environmentValue := range request.ShellEnvironment {
		invocation.setEnvironment(environmentName, environmentValue)
	}
}
