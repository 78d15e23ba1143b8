// Package ui renders build lifecycle events for people watching the console.
//
// ConsoleCommandEventLogger observes execshell commands and reports build
// start, completion with elapsed time, and failures, while detailed telemetry
// keeps flowing through structured loggers.
package ui
