package invoker

import (
	"path/filepath"
	"strings"
)

const (
	defaultExecutableNameConstant   = "mvn"
	mavenHomeBinDirectoryConstant   = "bin"
	windowsCommandSuffixConstant    = ".cmd"
	windowsBatchSuffixConstant      = ".bat"
	windowsPowerShellSuffixConstant = ".ps1"
	unixScriptSuffixConstant        = ""
	pathSeparatorCharactersConstant = `/\`
)

// Launcher suffixes tried in order for each operating system family.
var executableSuffixRules = map[OperatingSystemFamily][]string{
	OperatingSystemFamilyWindows: {windowsCommandSuffixConstant, windowsBatchSuffixConstant, windowsPowerShellSuffixConstant},
	OperatingSystemFamilyUnix:    {unixScriptSuffixConstant},
}

// executableCandidateNames lists the file names tried for executableName, in priority order.
func executableCandidateNames(family OperatingSystemFamily, executableName string) []string {
	suffixes, known := executableSuffixRules[family]
	if !known {
		suffixes = executableSuffixRules[OperatingSystemFamilyUnix]
	}

	candidateNames := make([]string, 0, len(suffixes)+1)
	seenNames := make(map[string]struct{}, len(suffixes)+1)
	addCandidate := func(candidateName string) {
		if _, seen := seenNames[candidateName]; seen {
			return
		}
		seenNames[candidateName] = struct{}{}
		candidateNames = append(candidateNames, candidateName)
	}

	if family == OperatingSystemFamilyWindows && len(filepath.Ext(executableName)) > 0 {
		addCandidate(executableName)
	}
	for _, suffix := range suffixes {
		addCandidate(executableName + suffix)
	}
	return candidateNames
}

func isBareExecutableName(executableName string) bool {
	return !strings.ContainsAny(executableName, pathSeparatorCharactersConstant)
}
