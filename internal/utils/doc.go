// Package utils exposes reusable helpers consumed by the mvn-invoker commands.
//
// It houses ConfigurationLoader and LoggerFactory abstractions that integrate
// Viper, environment variables, and zap logging for the CLI, along with the
// command context accessor shared between the root command and subcommands.
package utils
