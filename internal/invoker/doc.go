// Package invoker turns an InvocationRequest into the concrete command line that
// launches Maven and optionally runs it.
//
// CommandLineBuilder owns the decision logic: it resolves the base and working
// directories, locates the launcher script for the current operating system
// family, and emits Maven flags in a fixed order. Builder-level defaults act as
// fallbacks for values the request leaves unset. Invoker couples the builder with
// an execshell executor to run the resulting Invocation.
package invoker
