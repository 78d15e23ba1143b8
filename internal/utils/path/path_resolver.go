package pathutils

import (
	"path/filepath"
	"strings"
)

// PathResolver normalizes user supplied filesystem paths: it trims whitespace, expands the home directory
// shortcut and anchors relative paths at a base directory.
type PathResolver struct {
	homeExpander    *HomeExpander
	anchorDirectory string
}

// NewPathResolver constructs a PathResolver that leaves relative paths relative.
func NewPathResolver() *PathResolver {
	return NewPathResolverWithExpander(nil, "")
}

// NewPathResolverWithExpander constructs a PathResolver anchored at anchorDirectory. An empty anchor keeps
// relative paths unchanged so they later resolve against the process working directory.
func NewPathResolverWithExpander(homeExpander *HomeExpander, anchorDirectory string) *PathResolver {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}
	return &PathResolver{homeExpander: resolvedExpander, anchorDirectory: strings.TrimSpace(anchorDirectory)}
}

// Anchored returns a copy of the resolver that anchors relative paths at anchorDirectory.
func (resolver *PathResolver) Anchored(anchorDirectory string) *PathResolver {
	if resolver == nil {
		return NewPathResolverWithExpander(nil, anchorDirectory)
	}
	return NewPathResolverWithExpander(resolver.homeExpander, anchorDirectory)
}

// Resolve normalizes one path. Empty input yields an empty result.
func (resolver *PathResolver) Resolve(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}
	if resolver == nil {
		return trimmedPath
	}

	expandedPath := resolver.homeExpander.Expand(trimmedPath)
	if filepath.IsAbs(expandedPath) || len(resolver.anchorDirectory) == 0 {
		return expandedPath
	}
	return filepath.Join(resolver.anchorDirectory, expandedPath)
}

// ResolveAll normalizes every path and drops blank entries.
func (resolver *PathResolver) ResolveAll(candidatePaths []string) []string {
	resolvedPaths := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		resolvedPath := resolver.Resolve(candidatePath)
		if len(resolvedPath) == 0 {
			continue
		}
		resolvedPaths = append(resolvedPaths, resolvedPath)
	}
	if len(resolvedPaths) == 0 {
		return nil
	}
	return resolvedPaths
}
