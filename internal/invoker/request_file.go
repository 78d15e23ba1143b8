package invoker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	requestFileLoadErrorTemplateConstant      = "failed to load invocation request: %w"
	requestFileParseErrorTemplateConstant     = "failed to parse invocation request: %w"
	requestFileTimeoutErrorTemplateConstant   = "invalid invocation request timeout %q: %w"
	requestFilePathRequiredMessageConstant    = "invocation request path must be provided"
	propertiesMappingRequiredTemplateConstant = "properties must be a mapping (line %d)"
	propertiesScalarRequiredTemplateConstant  = "property %q must be a scalar value (line %d)"
	requestFileHomePrefixConstant             = "~"
	requestWrapperKeyConstant                 = "request"
)

// requestDocument is the YAML shape of an InvocationRequest.
type requestDocument struct {
	BaseDirectory            string `yaml:"base_directory"`
	PomFile                  string `yaml:"pom_file"`
	PomFileName              string `yaml:"pom_file_name"`
	LocalRepositoryDirectory string `yaml:"local_repository"`
	MavenHome                string `yaml:"maven_home"`
	MavenExecutable          string `yaml:"maven_executable"`
	JavaHome                 string `yaml:"java_home"`
	MavenOptions             string `yaml:"maven_opts"`

	Goals     []string `yaml:"goals"`
	Arguments []string `yaml:"arguments"`

	BatchMode                    bool `yaml:"batch_mode"`
	Offline                      bool `yaml:"offline"`
	UpdateSnapshots              bool `yaml:"update_snapshots"`
	Debug                        bool `yaml:"debug"`
	ShowErrors                   bool `yaml:"show_errors"`
	Quiet                        bool `yaml:"quiet"`
	NonRecursive                 bool `yaml:"non_recursive"`
	ShowVersion                  bool `yaml:"show_version"`
	NoTransferProgress           bool `yaml:"no_transfer_progress"`
	IgnoreTransitiveRepositories bool `yaml:"ignore_transitive_repositories"`

	UpdateSnapshotsPolicy  string `yaml:"update_snapshots_policy"`
	GlobalChecksumPolicy   string `yaml:"global_checksum_policy"`
	ReactorFailureBehavior string `yaml:"reactor_failure_behavior"`

	Projects           []string `yaml:"projects"`
	AlsoMake           bool     `yaml:"also_make"`
	AlsoMakeDependents bool     `yaml:"also_make_dependents"`
	ResumeFrom         string   `yaml:"resume_from"`
	Builder            string   `yaml:"builder"`
	Threads            string   `yaml:"threads"`
	Profiles           []string `yaml:"profiles"`

	UserSettingsFile   string `yaml:"user_settings"`
	GlobalSettingsFile string `yaml:"global_settings"`
	ToolchainsFile     string `yaml:"toolchains"`

	Properties              documentProperties `yaml:"properties"`
	ShellEnvironment        map[string]string  `yaml:"environment"`
	InheritShellEnvironment *bool              `yaml:"inherit_environment"`
	Timeout                 string             `yaml:"timeout"`
}

// documentProperties keeps the order in which properties appear in the document.
type documentProperties Properties

// UnmarshalYAML decodes a mapping of property names to scalar values.
func (properties *documentProperties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf(propertiesMappingRequiredTemplateConstant, node.Line)
	}

	decoded := make(Properties, 0, len(node.Content)/2)
	for contentIndex := 0; contentIndex+1 < len(node.Content); contentIndex += 2 {
		keyNode := node.Content[contentIndex]
		valueNode := node.Content[contentIndex+1]
		if valueNode.Kind != yaml.ScalarNode {
			return fmt.Errorf(propertiesScalarRequiredTemplateConstant, keyNode.Value, valueNode.Line)
		}
		decoded.Set(keyNode.Value, valueNode.Value)
	}
	*properties = documentProperties(decoded)
	return nil
}

// LoadRequestFile reads an InvocationRequest from a YAML document. The request may sit at the top level or under
// a "request" key. Relative paths in the document resolve against the document's directory.
func LoadRequestFile(filePath string) (InvocationRequest, error) {
	return LoadRequestFileWithDefaults(filePath, InvocationRequest{})
}

// LoadRequestFileWithDefaults is LoadRequestFile with the boolean toggles of defaults kept for every toggle key
// the document omits. A key that is present, false included, replaces the default.
func LoadRequestFileWithDefaults(filePath string, defaults InvocationRequest) (InvocationRequest, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return InvocationRequest{}, errors.New(requestFilePathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return InvocationRequest{}, fmt.Errorf(requestFileLoadErrorTemplateConstant, readError)
	}

	request, parseError := ParseRequestDocumentWithDefaults(contentBytes, defaults)
	if parseError != nil {
		return InvocationRequest{}, parseError
	}

	absoluteDocumentPath, absoluteError := filepath.Abs(trimmedPath)
	if absoluteError != nil {
		return InvocationRequest{}, fmt.Errorf(requestFileLoadErrorTemplateConstant, absoluteError)
	}
	resolveRequestPaths(&request, filepath.Dir(absoluteDocumentPath))
	return request, nil
}

// ParseRequestDocument decodes YAML content into an InvocationRequest without touching the filesystem.
func ParseRequestDocument(contentBytes []byte) (InvocationRequest, error) {
	return ParseRequestDocumentWithDefaults(contentBytes, InvocationRequest{})
}

// ParseRequestDocumentWithDefaults decodes YAML content onto the boolean toggles of defaults.
func ParseRequestDocumentWithDefaults(contentBytes []byte, defaults InvocationRequest) (InvocationRequest, error) {
	document := newRequestDocument(defaults)

	var rootNode yaml.Node
	if unmarshalError := yaml.Unmarshal(contentBytes, &rootNode); unmarshalError != nil {
		return InvocationRequest{}, fmt.Errorf(requestFileParseErrorTemplateConstant, unmarshalError)
	}
	if rootNode.Kind != yaml.DocumentNode || len(rootNode.Content) == 0 {
		return document.toRequest()
	}

	documentNode := rootNode.Content[0]
	if documentNode.Kind == yaml.MappingNode {
		for contentIndex := 0; contentIndex+1 < len(documentNode.Content); contentIndex += 2 {
			if documentNode.Content[contentIndex].Value == requestWrapperKeyConstant {
				documentNode = documentNode.Content[contentIndex+1]
				break
			}
		}
	}

	if decodeError := documentNode.Decode(&document); decodeError != nil {
		return InvocationRequest{}, fmt.Errorf(requestFileParseErrorTemplateConstant, decodeError)
	}
	return document.toRequest()
}

// newRequestDocument seeds a document with the toggles of defaults. Decoding only touches keys that are present.
func newRequestDocument(defaults InvocationRequest) requestDocument {
	return requestDocument{
		BatchMode:                    defaults.BatchMode,
		Offline:                      defaults.Offline,
		UpdateSnapshots:              defaults.UpdateSnapshots,
		Debug:                        defaults.Debug,
		ShowErrors:                   defaults.ShowErrors,
		Quiet:                        defaults.Quiet,
		NonRecursive:                 defaults.NonRecursive,
		ShowVersion:                  defaults.ShowVersion,
		NoTransferProgress:           defaults.NoTransferProgress,
		IgnoreTransitiveRepositories: defaults.IgnoreTransitiveRepositories,
		AlsoMake:                     defaults.AlsoMake,
		AlsoMakeDependents:           defaults.AlsoMakeDependents,
	}
}

func (document requestDocument) toRequest() (InvocationRequest, error) {
	updateSnapshotsPolicy, updateSnapshotsError := ParseUpdateSnapshotsPolicy(document.UpdateSnapshotsPolicy)
	if updateSnapshotsError != nil {
		return InvocationRequest{}, fmt.Errorf(requestFileParseErrorTemplateConstant, updateSnapshotsError)
	}
	checksumPolicy, checksumError := ParseChecksumPolicy(document.GlobalChecksumPolicy)
	if checksumError != nil {
		return InvocationRequest{}, fmt.Errorf(requestFileParseErrorTemplateConstant, checksumError)
	}
	reactorFailureBehavior, reactorError := ParseReactorFailureBehavior(document.ReactorFailureBehavior)
	if reactorError != nil {
		return InvocationRequest{}, fmt.Errorf(requestFileParseErrorTemplateConstant, reactorError)
	}

	var timeout time.Duration
	if trimmedTimeout := strings.TrimSpace(document.Timeout); len(trimmedTimeout) > 0 {
		parsedTimeout, timeoutError := time.ParseDuration(trimmedTimeout)
		if timeoutError != nil {
			return InvocationRequest{}, fmt.Errorf(requestFileTimeoutErrorTemplateConstant, document.Timeout, timeoutError)
		}
		timeout = parsedTimeout
	}

	return InvocationRequest{
		BaseDirectory:                document.BaseDirectory,
		PomFile:                      document.PomFile,
		PomFileName:                  document.PomFileName,
		LocalRepositoryDirectory:     document.LocalRepositoryDirectory,
		MavenHome:                    document.MavenHome,
		MavenExecutable:              document.MavenExecutable,
		JavaHome:                     document.JavaHome,
		MavenOptions:                 document.MavenOptions,
		Goals:                        document.Goals,
		Arguments:                    document.Arguments,
		BatchMode:                    document.BatchMode,
		Offline:                      document.Offline,
		UpdateSnapshots:              document.UpdateSnapshots,
		Debug:                        document.Debug,
		ShowErrors:                   document.ShowErrors,
		Quiet:                        document.Quiet,
		NonRecursive:                 document.NonRecursive,
		ShowVersion:                  document.ShowVersion,
		NoTransferProgress:           document.NoTransferProgress,
		IgnoreTransitiveRepositories: document.IgnoreTransitiveRepositories,
		UpdateSnapshotsPolicy:        updateSnapshotsPolicy,
		GlobalChecksumPolicy:         checksumPolicy,
		ReactorFailureBehavior:       reactorFailureBehavior,
		Projects:                     document.Projects,
		AlsoMake:                     document.AlsoMake,
		AlsoMakeDependents:           document.AlsoMakeDependents,
		ResumeFrom:                   document.ResumeFrom,
		Builder:                      document.Builder,
		Threads:                      document.Threads,
		Profiles:                     document.Profiles,
		UserSettingsFile:             document.UserSettingsFile,
		GlobalSettingsFile:           document.GlobalSettingsFile,
		ToolchainsFile:               document.ToolchainsFile,
		Properties:                   Properties(document.Properties),
		ShellEnvironment:             document.ShellEnvironment,
		ShellEnvironmentInherited:    document.InheritShellEnvironment,
		Timeout:                      timeout,
	}, nil
}

// resolveRequestPaths anchors relative filesystem paths at documentDirectory. Bare executable names stay
// untouched so they are still searched on PATH.
func resolveRequestPaths(request *InvocationRequest, documentDirectory string) {
	anchor := func(path string) string {
		if len(path) == 0 || filepath.IsAbs(path) || strings.HasPrefix(path, requestFileHomePrefixConstant) {
			return path
		}
		return filepath.Join(documentDirectory, path)
	}

	// A relative POM file is resolved by the builder against an explicit base directory.
	if len(request.BaseDirectory) == 0 {
		request.PomFile = anchor(request.PomFile)
	}
	request.BaseDirectory = anchor(request.BaseDirectory)
	request.LocalRepositoryDirectory = anchor(request.LocalRepositoryDirectory)
	request.MavenHome = anchor(request.MavenHome)
	request.JavaHome = anchor(request.JavaHome)
	request.UserSettingsFile = anchor(request.UserSettingsFile)
	request.GlobalSettingsFile = anchor(request.GlobalSettingsFile)
	request.ToolchainsFile = anchor(request.ToolchainsFile)
	if !isBareExecutableName(request.MavenExecutable) {
		request.MavenExecutable = anchor(request.MavenExecutable)
	}
}
