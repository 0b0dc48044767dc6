package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/scantag/internal/app"
	"github.com/muurk/scantag/internal/apperr"
	"github.com/muurk/scantag/internal/device"
	"github.com/muurk/scantag/internal/discovery"
	"github.com/muurk/scantag/internal/feed"
	"github.com/muurk/scantag/internal/logging"
	"github.com/muurk/scantag/internal/ports"
	"github.com/muurk/scantag/internal/store"
	"github.com/muurk/scantag/internal/tui"
	"github.com/muurk/scantag/internal/ui"
)

// Subcommand flags
var (
	outputFormat string
	listenPort   string
	showFile     string
	watchTimeout int
	watchList    bool
)

func init() {
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)

	portsCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
	showCmd.Flags().StringVar(&showFile, "file", "", "File to show (default: the configured output file)")
	showCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
	listenCmd.Flags().StringVarP(&listenPort, "port", "p", "", "Serial port to read from (default: the last used port)")
	watchCmd.Flags().IntVar(&watchTimeout, "timeout", 5, "Seconds to search for a feed over mDNS")
	watchCmd.Flags().BoolVar(&watchList, "list", false, "List the feeds found over mDNS and exit")
}

// runTUI launches the interactive screen
func runTUI(cmd *cobra.Command, args []string) error {
	publisher, stop, err := startFeed()
	if err != nil {
		return err
	}
	defer stop()

	a := app.New(app.Options{
		Device:     settings.device,
		OutputPath: settings.output,
		Publisher:  publisher,
		Registry:   registry,
	})
	defer a.Close()

	p := tea.NewProgram(tui.New(a, settings.poll), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI error: %w", err)
	}
	return nil
}

// startFeed starts the live feed when it is enabled. The returned function
// shuts it down.
func startFeed() (feed.Publisher, func(), error) {
	if !settings.feed {
		return feed.Discard, func() {}, nil
	}

	srv := feed.NewServer(feed.Config{
		Addr:      settings.feedAddr,
		Advertise: settings.advertise,
	})
	if err := srv.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start feed: %w", err)
	}

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("Feed shutdown failed", zap.Error(err))
		}
	}
	return srv, stop, nil
}

// portsCmd lists openable serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Long: `List the serial ports that can be opened on this machine.

Each candidate port for the platform is opened briefly; ports that cannot
be opened (absent, busy, or permission denied) are left out. USB ports
show their vendor and product IDs.`,
	Example: `  # List ports
  scantag ports

  # JSON output for scripting
  scantag ports --format json`,
	RunE: runPorts,
}

func runPorts(cmd *cobra.Command, args []string) error {
	printer := ui.NewPrinter(cmd.OutOrStdout())

	list, err := ports.ListAvailable()
	if err != nil {
		printer.PrintError("Port scan failed", err, apperr.TroubleshootingHint(err))
		return err
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		printer.Println(string(data))
		return nil
	}

	printPorts(printer, list)
	return nil
}

func printPorts(printer *ui.Printer, list []ports.Port) {
	if len(list) == 0 {
		printer.PrintWarning("No serial ports found",
			ui.Param{Key: "Hint", Value: "Plug in the scanner, or check access to the serial devices"},
		)
		return
	}
	printer.PrintHeader("Serial Ports", "scantag ports",
		ui.Param{Key: "Found", Value: strconv.Itoa(len(list))},
	)
	printer.PrintPorts(list)
}

// listenCmd prints tokens from a port
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print tokens from a serial port",
	Long: `Open a serial port and print every token it sends, one per line, until
interrupted with Ctrl+C.

When stdout is not a terminal only the bare tokens are printed, so the
output can be piped into other tools. With --feed-addr the tokens are also
broadcast on the live feed.`,
	Example: `  # Print tokens from a USB scanner
  scantag listen --port /dev/ttyUSB0

  # Pipe tokens into another program
  scantag listen -p COM3 | sort -u`,
	RunE: runListen,
}

func runListen(cmd *cobra.Command, args []string) error {
	port := listenPort
	if port == "" {
		port = registry.Serial.LastPort
	}
	if port == "" {
		return apperr.NewSelectionError("no port given; use --port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, stopFeed, err := startFeed()
	if err != nil {
		return err
	}
	defer stopFeed()

	printer := ui.NewPrinter(cmd.OutOrStdout())

	session, err := device.Open(port, settings.device)
	if err != nil {
		ui.NewPrinter(cmd.ErrOrStderr()).PrintError("Connection failed", err, apperr.TroubleshootingHint(err))
		return err
	}
	defer session.Close()

	opts := session.Options()
	ui.NewPrinter(cmd.ErrOrStderr()).PrintHeader("Listening", "scantag listen",
		ui.Param{Key: "Port", Value: port},
		ui.Param{Key: "Baud", Value: strconv.Itoa(opts.BaudRate)},
	)

	registry.RememberPort(port)
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to remember last port", zap.String("port", port), zap.Error(err))
	}

	return listen(ctx, session, settings.poll, publisher, printer.PrintToken)
}

// tokenSource is the part of a session listen reads from.
type tokenSource interface {
	Name() string
	Poll() (string, bool)
	Err() error
}

// listen drains src every interval, handing each token to emit and the
// publisher, until ctx is done or the device goes away.
func listen(ctx context.Context, src tokenSource, interval time.Duration, publisher feed.Publisher, emit func(time.Time, string)) error {
	if interval <= 0 {
		interval = tui.DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		for {
			token, ok := src.Poll()
			if !ok {
				break
			}
			logging.LogToken(src.Name(), token)
			emit(time.Now(), token)

			ev := feed.NewEvent(feed.EventToken, "")
			ev.Port = src.Name()
			ev.Token = token
			publisher.Publish(ev)
		}

		if err := src.Err(); err != nil {
			return err
		}
	}
}

// showCmd prints a saved names file
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a saved names file",
	Long: `Print the token to name mapping in a file written by scantag, sorted by
token.`,
	Example: `  # Show the configured output file
  scantag show

  # Show another file as JSON
  scantag show --file backup.json --format json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	path := showFile
	if path == "" {
		path = settings.output
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())

	names, err := store.Load(path)
	if err != nil {
		printer.PrintError("Cannot read names", err, apperr.TroubleshootingHint(err))
		return err
	}

	if outputFormat == "json" {
		data, err := store.Encode(names)
		if err != nil {
			return err
		}
		printer.Print(string(data))
		return nil
	}

	printNames(printer, path, names)
	return nil
}

func printNames(printer *ui.Printer, path string, names map[string]string) {
	if len(names) == 0 {
		printer.PrintWarning("No names saved", ui.Param{Key: "File", Value: path})
		return
	}
	printer.PrintHeader("Saved Names", "scantag show",
		ui.Param{Key: "File", Value: path},
		ui.Param{Key: "Entries", Value: strconv.Itoa(len(names))},
	)
	printer.PrintNames(names)
}

// watchCmd follows a live feed
var watchCmd = &cobra.Command{
	Use:   "watch [url]",
	Short: "Follow the live feed of a running scantag",
	Long: `Connect to the websocket feed of a scantag started with --feed-addr and
print its events until interrupted.

Without a URL, the local network is searched over mDNS for a feed started
with --advertise. With --list every feed found is printed instead.`,
	Example: `  # Find a feed on the network
  scantag watch

  # List the feeds on the network
  scantag watch --list --timeout 3

  # Connect directly
  scantag watch ws://127.0.0.1:8765/ws`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := ui.NewPrinter(cmd.OutOrStdout())

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(watchTimeout) * time.Second

	if watchList {
		feeds, err := scanner.ScanForFeeds(ctx)
		if err != nil {
			printer.PrintError("Feed scan failed", err, nil)
			return err
		}
		printFeeds(printer, scanner.Timeout, feeds)
		return nil
	}

	var url string
	if len(args) == 1 {
		url = args[0]
	} else {
		found, err := scanner.WaitForFeed(ctx)
		if err != nil {
			err = fmt.Errorf("%w: %v", feed.ErrNoFeed, err)
			printer.PrintError("No feed found", err, []string{
				"Start scantag with --advertise on the scanning machine",
				"Check that both machines are on the same network",
				"Pass the feed URL directly: scantag watch ws://host:port/ws",
			})
			return err
		}
		url = found.URL()
	}

	printer.PrintHeader("Watching", "scantag watch", ui.Param{Key: "Feed", Value: url})

	return feed.Watch(ctx, url, func(ev feed.Event) {
		printer.Println(describeEvent(ev))
	})
}

func printFeeds(printer *ui.Printer, timeout time.Duration, feeds []*discovery.Feed) {
	if len(feeds) == 0 {
		printer.PrintWarning("No feeds found",
			ui.Param{Key: "Searched", Value: timeout.String()},
			ui.Param{Key: "Hint", Value: "Start scantag with --advertise on the scanning machine"},
		)
		return
	}
	for _, f := range feeds {
		printer.Println(fmt.Sprintf("  %-24s %s", f.Instance, f.URL()))
	}
	printer.Newline()
	printer.PrintSuccess(fmt.Sprintf("%d feed(s) found", len(feeds)),
		ui.Param{Key: "Watch", Value: "scantag watch " + feeds[0].URL()},
	)
}

// describeEvent renders one feed event as a line of text.
func describeEvent(ev feed.Event) string {
	at := ev.Timestamp.Local().Format("15:04:05")
	switch ev.Type {
	case feed.EventConnected:
		return fmt.Sprintf("%s  connected     %s", at, ev.Port)
	case feed.EventDisconnected:
		return fmt.Sprintf("%s  disconnected  %s (%s)", at, ev.Port, ev.Reason)
	case feed.EventToken:
		return fmt.Sprintf("%s  token         %s", at, ev.Token)
	case feed.EventNamed:
		return fmt.Sprintf("%s  named         %s → %s", at, ev.Token, ev.Name)
	case feed.EventDeleted:
		return fmt.Sprintf("%s  deleted       %s", at, ev.Token)
	case feed.EventSaved:
		return fmt.Sprintf("%s  saved         %d name(s) to %s", at, ev.Count, ev.Path)
	default:
		return fmt.Sprintf("%s  %s", at, ev.Type)
	}
}
