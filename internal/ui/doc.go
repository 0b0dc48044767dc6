// Package ui renders the output of scantag's one-shot commands.
//
// The interactive screen lives in package tui. The components here follow a
// "print and exit" pattern for the ports, show, listen and watch commands:
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success, warning and failure boxes with troubleshooting tips
//   - Listings: ports and token/name tables
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Listening", "scantag listen",
//	    ui.Param{Key: "Port", Value: "/dev/ttyUSB0"},
//	    ui.Param{Key: "Baud", Value: "9600"},
//	)
//	p.PrintToken(time.Now(), "ABC123")
//
// When stdout is not a terminal, PrintToken writes bare tokens so the output
// can be piped into other tools.
//
// # Logging Integration
//
// zap logging is silent unless SCANTAG_LOG_LEVEL is set, so this output is
// never interleaved with log lines.
package ui
