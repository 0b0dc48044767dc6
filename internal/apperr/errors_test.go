package apperr

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("empty name"),
			want: "Validation Error: empty name",
		},
		{
			name: "with cause",
			err:  NewConnectionError("/dev/ttyUSB0", "failed to open serial port", os.ErrPermission),
			want: "Connection Error: failed to open serial port (caused by: permission denied)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewIOError("data.json", "failed to write output file", os.ErrPermission)
	if !errors.Is(err, os.ErrPermission) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsHelpers_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", NewIOError("data.json", "disk full", nil))

	if !IsIO(wrapped) {
		t.Error("IsIO() should see through fmt.Errorf wrapping")
	}
	if IsConnection(wrapped) {
		t.Error("IsConnection() should be false for an I/O error")
	}
	if IsValidation(errors.New("plain")) {
		t.Error("IsValidation() should be false for a plain error")
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   ErrorType
		wantOK bool
	}{
		{"platform", NewPlatformUnsupportedError("plan9"), ErrTypePlatformUnsupported, true},
		{"selection", NewSelectionError("no row selected"), ErrTypeSelection, true},
		{"not found", NewNotFoundError("row 3"), ErrTypeNotFound, true},
		{"foreign", errors.New("boom"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TypeOf(tt.err)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("TypeOf() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", NewValidationError("empty name"), "Empty name"},
		{"connection with port", NewConnectionError("COM3", "open failed", nil), "Could not use serial port COM3"},
		{"io with path", NewIOError("/tmp/x.json", "write failed", nil), "Could not write /tmp/x.json"},
		{"foreign", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortMessage(tt.err); got != tt.want {
				t.Errorf("ShortMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTroubleshootingHint(t *testing.T) {
	hints := TroubleshootingHint(NewIOError("data.json", "write failed", nil))
	if len(hints) == 0 {
		t.Fatal("expected hints for an I/O error")
	}
	if !strings.Contains(strings.Join(hints, " "), "kept") {
		t.Errorf("I/O hints should reassure that data was kept, got %v", hints)
	}

	if hints := TroubleshootingHint(errors.New("boom")); hints != nil {
		t.Errorf("foreign errors should have no hints, got %v", hints)
	}
}

func TestErrorType_String(t *testing.T) {
	if got := ErrorType(99).String(); got != "ErrorType(99)" {
		t.Errorf("String() = %q, want %q", got, "ErrorType(99)")
	}
}
