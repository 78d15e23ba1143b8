// Package build implements the build subcommand, which layers configured
// defaults, an optional request file and command line flags into a Maven
// invocation request and runs it through the invoker.
package build
