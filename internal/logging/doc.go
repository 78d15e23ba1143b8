// Package logging provides LeveledLogger, the threshold logger used to report
// command line construction and build progress.
//
// Five severities are supported (debug, info, warn, error, fatal). Messages
// below the configured threshold are discarded before any formatting happens.
// Enabled messages are written as a single line to standard output unless a
// different writer is supplied.
package logging
