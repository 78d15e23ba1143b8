package invoker

import (
	"sort"
	"strings"
)

const (
	environmentAssignmentSeparatorConstant = "="
	invocationArgumentSeparatorConstant    = " "
)

// Invocation is a fully resolved process launch: executable, working directory, arguments and environment.
type Invocation struct {
	Executable       string
	WorkingDirectory string
	Arguments        []string
	Environment      map[string]string
}

// EnvironmentAssignments renders Environment as NAME=VALUE pairs sorted by name.
func (invocation Invocation) EnvironmentAssignments() []string {
	environmentNames := make([]string, 0, len(invocation.Environment))
	for environmentName := range invocation.Environment {
		environmentNames = append(environmentNames, environmentName)
	}
	sort.Strings(environmentNames)

	assignments := make([]string, 0, len(environmentNames))
	for _, environmentName := range environmentNames {
		assignments = append(assignments, environmentName+environmentAssignmentSeparatorConstant+invocation.Environment[environmentName])
	}
	return assignments
}

// String renders the executable followed by its arguments, separated by spaces.
func (invocation Invocation) String() string {
	commandParts := make([]string, 0, len(invocation.Arguments)+1)
	commandParts = append(commandParts, invocation.Executable)
	commandParts = append(commandParts, invocation.Arguments...)
	return strings.Join(commandParts, invocationArgumentSeparatorConstant)
}

func (invocation *Invocation) appendArguments(arguments ...string) {
	invocation.Arguments = append(invocation.Arguments, arguments...)
}

func (invocation *Invocation) setEnvironment(name string, value string) {
	if invocation.Environment == nil {
		invocation.Environment = make(map[string]string)
	}
	invocation.Environment[name] = value
}
