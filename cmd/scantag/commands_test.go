package main

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/scantag/internal/config"
	"github.com/muurk/scantag/internal/discovery"
	"github.com/muurk/scantag/internal/feed"
	"github.com/muurk/scantag/internal/ports"
	"github.com/muurk/scantag/internal/ui"
)

type fakeSource struct {
	queue []string
	err   error
	polls int
}

func (s *fakeSource) Name() string { return "/dev/ttyUSB0" }

func (s *fakeSource) Poll() (string, bool) {
	s.polls++
	if len(s.queue) == 0 {
		return "", false
	}
	token := s.queue[0]
	s.queue = s.queue[1:]
	return token, true
}

func (s *fakeSource) Err() error {
	if len(s.queue) == 0 {
		return s.err
	}
	return nil
}

type collector struct {
	events []feed.Event
}

func (c *collector) Publish(ev feed.Event) { c.events = append(c.events, ev) }

func TestListen_DrainsUntilDeviceLost(t *testing.T) {
	lost := errors.New("device unplugged")
	src := &fakeSource{queue: []string{"ABC123", "XYZ789"}, err: lost}
	pub := &collector{}

	var got []string
	err := listen(context.Background(), src, time.Millisecond, pub, func(_ time.Time, token string) {
		got = append(got, token)
	})

	if !errors.Is(err, lost) {
		t.Fatalf("listen() error = %v, want %v", err, lost)
	}
	if want := []string{"ABC123", "XYZ789"}; !reflect.DeepEqual(got, want) {
		t.Errorf("tokens = %v, want %v", got, want)
	}
	if len(pub.events) != 2 || pub.events[0].Type != feed.EventToken || pub.events[1].Token != "XYZ789" {
		t.Errorf("published = %+v", pub.events)
	}
}

func TestListen_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	src := &fakeSource{}
	if err := listen(ctx, src, time.Millisecond, feed.Discard, func(time.Time, string) {}); err != nil {
		t.Fatalf("listen() error = %v, want nil on cancel", err)
	}
	if src.polls == 0 {
		t.Error("source was never polled")
	}
}

func newFlagCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().StringVar(&outputPath, "output", "", "")
	c.Flags().IntVar(&baudRate, "baud", 0, "")
	c.Flags().StringVar(&feedAddr, "feed-addr", "", "")
	c.Flags().BoolVar(&advertise, "advertise", false, "")
	return c
}

func TestResolveSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(*testing.T, runSettings)
	}{
		{
			name: "file values without flags",
			args: nil,
			want: func(t *testing.T, s runSettings) {
				if s.output != config.DefaultOutputPath || s.device.BaudRate != config.DefaultBaudRate {
					t.Errorf("settings = %+v", s)
				}
				if s.feed {
					t.Error("feed enabled without a flag")
				}
				if s.poll != 100*time.Millisecond || s.device.ReadTimeout != time.Second {
					t.Errorf("poll = %v, read timeout = %v", s.poll, s.device.ReadTimeout)
				}
			},
		},
		{
			name: "output and baud flags",
			args: []string{"--output", "out.json", "--baud", "115200"},
			want: func(t *testing.T, s runSettings) {
				if s.output != "out.json" || s.device.BaudRate != 115200 {
					t.Errorf("settings = %+v", s)
				}
			},
		},
		{
			name: "feed addr enables the feed",
			args: []string{"--feed-addr", "0.0.0.0:9000"},
			want: func(t *testing.T, s runSettings) {
				if !s.feed || s.feedAddr != "0.0.0.0:9000" || s.advertise {
					t.Errorf("settings = %+v", s)
				}
			},
		},
		{
			name: "advertise enables the feed on the configured address",
			args: []string{"--advertise"},
			want: func(t *testing.T, s runSettings) {
				if !s.feed || !s.advertise || s.feedAddr != config.DefaultFeedAddr {
					t.Errorf("settings = %+v", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFlagCommand()
			if err := c.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}
			reg := config.NewRegistry()
			tt.want(t, resolveSettings(c, reg))

			if reg.Output.Path != config.DefaultOutputPath {
				t.Error("flag overrides leaked into the saved configuration")
			}
		})
	}
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		ev   feed.Event
		want string
	}{
		{feed.Event{Type: feed.EventToken, Token: "ABC123"}, "token         ABC123"},
		{feed.Event{Type: feed.EventNamed, Token: "ABC123", Name: "Widget"}, "ABC123 → Widget"},
		{feed.Event{Type: feed.EventDisconnected, Port: "COM3", Reason: "lost"}, "COM3 (lost)"},
		{feed.Event{Type: feed.EventSaved, Count: 2, Path: "data.json"}, "2 name(s) to data.json"},
	}

	for _, tt := range tests {
		t.Run(string(tt.ev.Type), func(t *testing.T) {
			if got := describeEvent(tt.ev); !strings.Contains(got, tt.want) {
				t.Errorf("describeEvent() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestPrintListings(t *testing.T) {
	tests := []struct {
		name  string
		print func(*ui.Printer)
		want  []string
	}{
		{
			name:  "no names",
			print: func(p *ui.Printer) { printNames(p, "data.json", map[string]string{}) },
			want:  []string{"WARNING", "No names saved", "data.json"},
		},
		{
			name:  "names",
			print: func(p *ui.Printer) { printNames(p, "data.json", map[string]string{"ABC123": "Widget"}) },
			want:  []string{"SAVED NAMES", "Entries:", "ABC123", "Widget"},
		},
		{
			name:  "no ports",
			print: func(p *ui.Printer) { printPorts(p, nil) },
			want:  []string{"WARNING", "No serial ports found"},
		},
		{
			name:  "ports",
			print: func(p *ui.Printer) { printPorts(p, []ports.Port{{Name: "/dev/ttyUSB0"}}) },
			want:  []string{"SERIAL PORTS", "/dev/ttyUSB0"},
		},
		{
			name:  "no feeds",
			print: func(p *ui.Printer) { printFeeds(p, 3*time.Second, nil) },
			want:  []string{"WARNING", "No feeds found", "3s"},
		},
		{
			name: "feeds",
			print: func(p *ui.Printer) {
				printFeeds(p, time.Second, []*discovery.Feed{{Instance: "bench", IP: "10.0.0.5", Port: 8765}})
			},
			want: []string{"bench", "ws://10.0.0.5:8765/ws", "SUCCESS", "1 feed(s) found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(ui.NewPrinter(&buf).SetWidth(100))
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}
