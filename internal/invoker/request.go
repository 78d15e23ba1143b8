package invoker

import (
	"io"
	"time"
)

// UpdateSnapshotsPolicy controls whether snapshot dependencies are refreshed.
type UpdateSnapshotsPolicy string

// Supported update snapshot policies. The zero value defers to Maven.
const (
	UpdateSnapshotsPolicyDefault UpdateSnapshotsPolicy = ""
	UpdateSnapshotsPolicyAlways  UpdateSnapshotsPolicy = "always"
	UpdateSnapshotsPolicyNever   UpdateSnapshotsPolicy = "never"
)

// ChecksumPolicy controls how checksum mismatches are treated during artifact retrieval.
type ChecksumPolicy string

// Supported checksum policies. The zero value defers to Maven.
const (
	ChecksumPolicyDefault ChecksumPolicy = ""
	ChecksumPolicyFail    ChecksumPolicy = "fail"
	ChecksumPolicyWarn    ChecksumPolicy = "warn"
)

// ReactorFailureBehavior controls how module failures propagate through the reactor.
type ReactorFailureBehavior string

// Supported reactor failure behaviors. The zero value is fail-fast.
const (
	ReactorFailureBehaviorFailFast  ReactorFailureBehavior = "fail-fast"
	ReactorFailureBehaviorFailAtEnd ReactorFailureBehavior = "fail-at-end"
	ReactorFailureBehaviorFailNever ReactorFailureBehavior = "fail-never"
)

// OutputLineHandler receives one line of process output without its trailing newline.
type OutputLineHandler func(line string)

// Property is a single system property passed as -D key=value.
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered list of system properties.
type Properties []Property

// Set stores value under key, replacing an existing entry in place or appending a new one.
func (properties *Properties) Set(key string, value string) {
	for propertyIndex := range *properties {
		if (*properties)[propertyIndex].Key == key {
			(*properties)[propertyIndex].Value = value
			return
		}
	}
	*properties = append(*properties, Property{Key: key, Value: value})
}

// Lookup returns the value stored under key.
func (properties Properties) Lookup(key string) (string, bool) {
	for _, property := range properties {
		if property.Key == key {
			return property.Value, true
		}
	}
	return "", false
}

// InvocationRequest describes one Maven build. Empty fields mean "not set".
type InvocationRequest struct {
	BaseDirectory            string
	PomFile                  string
	PomFileName              string
	LocalRepositoryDirectory string
	MavenHome                string
	MavenExecutable          string
	JavaHome                 string
	MavenOptions             string

	// Goals is kept for callers that predate Arguments. Goals are emitted before Arguments.
	Goals     []string
	Arguments []string

	BatchMode                    bool
	Offline                      bool
	UpdateSnapshots              bool
	Debug                        bool
	ShowErrors                   bool
	Quiet                        bool
	NonRecursive                 bool
	ShowVersion                  bool
	NoTransferProgress           bool
	IgnoreTransitiveRepositories bool

	UpdateSnapshotsPolicy  UpdateSnapshotsPolicy
	GlobalChecksumPolicy   ChecksumPolicy
	ReactorFailureBehavior ReactorFailureBehavior

	Projects           []string
	AlsoMake           bool
	AlsoMakeDependents bool
	ResumeFrom         string
	Builder            string
	Threads            string
	Profiles           []string

	UserSettingsFile   string
	GlobalSettingsFile string
	ToolchainsFile     string

	Properties       Properties
	ShellEnvironment map[string]string
	// ShellEnvironmentInherited controls whether the launched process sees the caller's environment. Nil means inherit.
	ShellEnvironmentInherited *bool

	Timeout       time.Duration
	InputStream   io.Reader
	OutputHandler OutputLineHandler
	ErrorHandler  OutputLineHandler
}

// AddArgument appends a free-form argument.
func (request *InvocationRequest) AddArgument(argument string) *InvocationRequest {
	request.Arguments = append(request.Arguments, argument)
	return request
}

// AddArguments appends free-form arguments in order.
func (request *InvocationRequest) AddArguments(arguments ...string) *InvocationRequest {
	request.Arguments = append(request.Arguments, arguments...)
	return request
}

// SetProperty stores a system property, keeping the position of an existing key.
func (request *InvocationRequest) SetProperty(key string, value string) *InvocationRequest {
	request.Properties.Set(key, value)
	return request
}

// AddShellEnvironment records an environment variable override for the launched process.
func (request *InvocationRequest) AddShellEnvironment(name string, value string) *InvocationRequest {
	if request.ShellEnvironment == nil {
		request.ShellEnvironment = make(map[string]string)
	}
	request.ShellEnvironment[name] = value
	return request
}

// InheritsShellEnvironment reports whether the launched process sees the caller's environment.
func (request InvocationRequest) InheritsShellEnvironment() bool {
	if request.ShellEnvironmentInherited == nil {
		return true
	}
	return *request.ShellEnvironmentInherited
}
