package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/muurk/scantag/internal/ports"
)

func TestPrintToken_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintToken(time.Now(), "ABC123")
	p.PrintToken(time.Now(), "XYZ789")

	if got, want := buf.String(), "ABC123\nXYZ789\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRenderPorts(t *testing.T) {
	out := RenderPorts([]ports.Port{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"},
		{Name: "/dev/ttyS0"},
	})

	for _, want := range []string{"PORT", "/dev/ttyUSB0", "USB 0403:6001 FT232R", "/dev/ttyS0"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderPorts() missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(RenderPorts(nil), "no serial ports") {
		t.Error("empty listing should say so")
	}
}

func TestRenderNames_SortedByToken(t *testing.T) {
	out := RenderNames(map[string]string{"XYZ789": "Gadget", "ABC123": "Widget"})

	abc := strings.Index(out, "ABC123")
	xyz := strings.Index(out, "XYZ789")
	if abc < 0 || xyz < 0 || abc > xyz {
		t.Errorf("RenderNames() not sorted by token:\n%s", out)
	}
	if !strings.Contains(out, "Widget") || !strings.Contains(out, "Gadget") {
		t.Errorf("RenderNames() missing names:\n%s", out)
	}
}

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success with details",
			result: NewSuccessResult("Saved", Param{Key: "File", Value: "data.json"}),
			want:   []string{"SUCCESS", "Saved", "File:", "data.json"},
		},
		{
			name:   "failure with hints",
			result: NewFailureResult("Connection failed", errors.New("device busy"), []string{"Unplug and retry"}),
			want:   []string{"FAILED", "device busy", "Troubleshooting:", "Unplug and retry"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No ports"),
			want:   []string{"WARNING", "No ports"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Render() missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestHeaderRender(t *testing.T) {
	out := NewHeader("Listening", "scantag listen",
		Param{Key: "Port", Value: "COM3"},
		Param{Key: "Baud", Value: "9600"},
	).SetWidth(80).Render()

	for _, want := range []string{"LISTENING", "scantag listen", "Port:", "COM3", "Baud:", "9600"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Port:") > strings.Index(out, "Baud:") {
		t.Error("params should render in the order given")
	}
}
