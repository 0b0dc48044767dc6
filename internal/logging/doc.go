// Package logging provides structured logging for scantag.
//
// The package wraps a global zap logger. Logging is silent unless a level
// is given, either through Options.Level (the --log-level flag) or the
// SCANTAG_LOG_LEVEL environment variable.
//
// The interactive terminal UI draws on stdout, so interactive runs write
// log entries to a rotated file (lumberjack). The one-shot subcommands can
// log to stderr instead.
//
//	if err := logging.Initialize(logging.Options{Level: "debug", File: "scantag.log"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.LogPortEvent("/dev/ttyUSB0", "opened", zap.Int("baud", 9600))
//	logging.LogToken("/dev/ttyUSB0", "ABC123")
package logging
