package invoker

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const (
	windowsOperatingSystemNameConstant = "windows"
)

// OperatingSystemFamily groups operating systems that share launcher conventions.
type OperatingSystemFamily string

// Supported operating system families.
const (
	OperatingSystemFamilyWindows OperatingSystemFamily = "windows"
	OperatingSystemFamilyUnix    OperatingSystemFamily = "unix"
)

// OperatingSystemFamilyDetector reports the family of the running operating system.
type OperatingSystemFamilyDetector func() OperatingSystemFamily

// ExecutableLookup searches the process command path for an executable name.
type ExecutableLookup func(executableName string) (string, error)

// EnvironmentLookup reads a variable from the process environment.
type EnvironmentLookup func(name string) (string, bool)

// FileSystem exposes the filesystem queries required to resolve a command line.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	EvalSymlinks(path string) (string, error)
	Getwd() (string, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// EvalSymlinks resolves symbolic links.
func (OSFileSystem) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// Getwd returns the process working directory.
func (OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// CurrentOperatingSystemFamily classifies runtime.GOOS.
func CurrentOperatingSystemFamily() OperatingSystemFamily {
	if runtime.GOOS == windowsOperatingSystemNameConstant {
		return OperatingSystemFamilyWindows
	}
	return OperatingSystemFamilyUnix
}

// BuilderDependencies overrides the platform seams used by CommandLineBuilder. Nil members use the operating system.
type BuilderDependencies struct {
	FileSystem            FileSystem
	OperatingSystemFamily OperatingSystemFamilyDetector
	ExecutableLookup      ExecutableLookup
	EnvironmentLookup     EnvironmentLookup
}

func (dependencies BuilderDependencies) withDefaults() BuilderDependencies {
	resolved := dependencies
	if resolved.FileSystem == nil {
		resolved.FileSystem = OSFileSystem{}
	}
	if resolved.OperatingSystemFamily == nil {
		resolved.OperatingSystemFamily = CurrentOperatingSystemFamily
	}
	if resolved.ExecutableLookup == nil {
		resolved.ExecutableLookup = exec.LookPath
	}
	if resolved.EnvironmentLookup == nil {
		resolved.EnvironmentLookup = os.LookupEnv
	}
	return resolved
}

// canonicalizePath returns an absolute path with symbolic links and dot segments resolved.
// Missing trailing segments are kept verbatim under the canonical form of their nearest existing ancestor.
func canonicalizePath(fileSystem FileSystem, candidatePath string) (string, error) {
	absolutePath, absoluteError := fileSystem.Abs(candidatePath)
	if absoluteError != nil {
		return "", absoluteError
	}

	resolvedPath, resolveError := fileSystem.EvalSymlinks(absolutePath)
	if resolveError == nil {
		return resolvedPath, nil
	}

	parentDirectory := filepath.Dir(absolutePath)
	if parentDirectory == absolutePath {
		return absolutePath, nil
	}

	canonicalParent, parentError := canonicalizePath(fileSystem, parentDirectory)
	if parentError != nil {
		return absolutePath, nil
	}
	return filepath.Join(canonicalParent, filepath.Base(absolutePath)), nil
}

func isRegularFile(fileSystem FileSystem, path string) bool {
	fileInfo, statError := fileSystem.Stat(path)
	if statError != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
