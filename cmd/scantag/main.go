// Scantag reads tokens from a serial barcode or RFID scanner and lets an
// operator name them.
//
// Running without arguments launches the interactive screen: pick a serial
// port, watch tokens arrive in a table, attach a name to each and save the
// token to name mapping as a JSON file. The subcommands list ports, print
// tokens to stdout, show a saved file and follow another scantag's live feed.
//
// Usage:
//
//	scantag [command] [flags]
//
// See 'scantag --help' for available commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scantag/internal/config"
	"github.com/muurk/scantag/internal/device"
	"github.com/muurk/scantag/internal/logging"
	"github.com/muurk/scantag/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	logLevel   string
	logFile    string
	outputPath string
	baudRate   int
	feedAddr   string
	advertise  bool
)

var rootCmd = &cobra.Command{
	Use:   "scantag",
	Short: "Name the tokens read by a serial scanner",
	Long: `Scantag reads newline-terminated tokens from a serial scanner, shows them
in a table and lets you attach a name to each one. Saving writes the
token to name mapping to a JSON file and clears the table.

If no command is specified, the interactive screen launches automatically.`,
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runTUI,
}

func init() {
	// Assigned here rather than in the literal: setup refers to rootCmd.
	rootCmd.PersistentPreRunE = setup

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); logging is off when empty")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file for the interactive screen (default: scantag.log in the config directory)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "JSON file that saved names are written to (default from config, then data.json)")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", 0, "Serial line speed (default from config, then 9600)")
	rootCmd.PersistentFlags().StringVar(&feedAddr, "feed-addr", "", "Serve a live websocket feed of scans on this address")
	rootCmd.PersistentFlags().BoolVar(&advertise, "advertise", false, "Announce the live feed over mDNS")

	rootCmd.AddCommand(versionCmd)
}

// Loaded by setup. registry is what gets saved back; settings carry the
// flag overrides and are never persisted.
var (
	registry *config.Registry
	settings runSettings
)

type runSettings struct {
	device    device.Options
	output    string
	poll      time.Duration
	feed      bool
	feedAddr  string
	advertise bool
}

// setup loads the configuration, applies flag overrides and starts logging.
// The interactive screen owns the terminal, so it logs to a file; the other
// commands log to stderr.
func setup(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	registry = reg
	settings = resolveSettings(cmd, reg)

	opts := logging.Options{Level: logLevel, File: logFile}
	if cmd == rootCmd {
		if opts.File == "" && os.Getenv(logging.LogFileEnvVar) == "" {
			if err := config.EnsureConfigDir(); err == nil {
				opts.File, _ = config.DefaultLogPath()
			}
		}
	} else {
		opts.Stderr = true
	}
	return logging.Initialize(opts)
}

// resolveSettings starts from the file values and overrides the flags that
// were set.
func resolveSettings(cmd *cobra.Command, reg *config.Registry) runSettings {
	s := runSettings{
		device: device.Options{
			BaudRate:    reg.Serial.BaudRate,
			ReadTimeout: reg.Serial.ReadTimeout(),
		},
		output:    reg.Output.Path,
		poll:      reg.Serial.PollInterval(),
		feed:      reg.Feed.Enabled,
		feedAddr:  reg.Feed.Addr,
		advertise: reg.Feed.Advertise,
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		s.output = outputPath
	}
	if flags.Changed("baud") && baudRate > 0 {
		s.device.BaudRate = baudRate
	}
	if flags.Changed("feed-addr") {
		s.feed = true
		s.feedAddr = feedAddr
	}
	if flags.Changed("advertise") {
		s.advertise = advertise
		s.feed = s.feed || advertise
	}
	return s
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scantag %s (commit: %s)\n", version.Version, version.Commit)
	},
}
