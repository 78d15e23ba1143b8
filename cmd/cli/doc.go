// Package cli assembles the mvn-invoker command line: the root command with
// its configuration and logging flags, and the build subcommand that runs Maven.
//
// Execute runs the default command set; ExitCode turns the returned error into
// the process exit status, keeping Maven's own code for failed builds.
package cli
