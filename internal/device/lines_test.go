package device

import (
	"bytes"
	"reflect"
	"testing"
)

func splitAll(l *lineSplitter, chunks ...[]byte) []string {
	var got []string
	for _, c := range chunks {
		l.feed(c, func(line []byte) bool {
			got = append(got, string(line))
			return true
		})
	}
	return got
}

func TestLineSplitter(t *testing.T) {
	long := bytes.Repeat([]byte("x"), MaxLineLength+1)
	exact := bytes.Repeat([]byte("y"), MaxLineLength)

	tests := []struct {
		name    string
		chunks  [][]byte
		want    []string
		dropped int
	}{
		{
			name:   "split across chunks",
			chunks: [][]byte{[]byte("AB"), []byte("C\nXY"), []byte("Z\n")},
			want:   []string{"ABC", "XYZ"},
		},
		{
			name:   "empty lines are passed on",
			chunks: [][]byte{[]byte("\n\nA\n")},
			want:   []string{"", "", "A"},
		},
		{
			name:    "oversized line is dropped",
			chunks:  [][]byte{long, []byte("\nABC123\n")},
			want:    []string{"ABC123"},
			dropped: 1,
		},
		{
			name:    "oversized across many chunks",
			chunks:  [][]byte{long[:MaxLineLength/2], long[MaxLineLength/2:], long, []byte("tail\nOK\n")},
			want:    []string{"OK"},
			dropped: 1,
		},
		{
			name:   "line at the limit is kept",
			chunks: [][]byte{exact, []byte("\n")},
			want:   []string{string(exact)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l lineSplitter
			got := splitAll(&l, tt.chunks...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %q, want %q", truncate(got), truncate(tt.want))
			}
			if l.dropped != tt.dropped {
				t.Errorf("dropped = %d, want %d", l.dropped, tt.dropped)
			}
		})
	}
}

func TestLineSplitter_BoundsUnterminatedInput(t *testing.T) {
	var l lineSplitter
	chunk := bytes.Repeat([]byte{0xff}, 1<<20)
	for i := 0; i < 64; i++ {
		splitAll(&l, chunk)
		if l.pending() > MaxLineLength {
			t.Fatalf("after %d MiB pending = %d, want at most %d", i+1, l.pending(), MaxLineLength)
		}
	}
}

func TestLineSplitter_StopsWhenEmitRefuses(t *testing.T) {
	var l lineSplitter
	calls := 0
	ok := l.feed([]byte("A\nB\nC\n"), func([]byte) bool {
		calls++
		return false
	})
	if ok || calls != 1 {
		t.Errorf("feed() = %v after %d calls, want false after 1", ok, calls)
	}
}

func truncate(lines []string) []string {
	out := make([]string, len(lines))
	for i, s := range lines {
		if len(s) > 16 {
			s = s[:16] + "..."
		}
		out[i] = s
	}
	return out
}
