package catalog

import (
	"testing"

	"github.com/muurk/scantag/internal/apperr"
)

func TestBuffer_AppendKeepsArrivalOrder(t *testing.T) {
	b := NewBuffer()
	tokens := []string{"ABC123", "XYZ789", "ABC123", "Q1"}
	for _, tok := range tokens {
		b.Append(tok)
	}

	rows := b.Rows()
	if len(rows) != len(tokens) {
		t.Fatalf("Len() = %d, want %d", len(rows), len(tokens))
	}
	for i, r := range rows {
		if r.Token != tokens[i] {
			t.Errorf("row %d token = %q, want %q", i, r.Token, tokens[i])
		}
		if r.Named() {
			t.Errorf("row %d should have no name after Append", i)
		}
	}
}

func TestBuffer_HandlesAreUniqueAndNotReused(t *testing.T) {
	b := NewBuffer()
	h1 := b.Append("A")
	h2 := b.Append("B")
	if h1 == h2 || h1 == NoRow || h2 == NoRow {
		t.Fatalf("handles should be distinct and non-zero, got %d and %d", h1, h2)
	}

	b.Clear()
	h3 := b.Append("C")
	if h3 == h1 || h3 == h2 {
		t.Errorf("handle %d reused after Clear()", h3)
	}
	if _, ok := b.Get(h1); ok {
		t.Error("Get() with a handle from before Clear() should fail")
	}
}

func TestBuffer_Delete(t *testing.T) {
	b := NewBuffer()
	h1 := b.Append("A")
	h2 := b.Append("B")
	h3 := b.Append("C")

	if err := b.Delete(h2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if b.IndexOf(h1) != 0 || b.IndexOf(h3) != 1 {
		t.Errorf("remaining rows out of order: IndexOf(h1)=%d IndexOf(h3)=%d", b.IndexOf(h1), b.IndexOf(h3))
	}

	err := b.Delete(h2)
	if !apperr.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want NotFound", err)
	}
	if b.Len() != 2 {
		t.Errorf("failed Delete() changed Len() to %d", b.Len())
	}
}

func TestBuffer_RowCountProperty(t *testing.T) {
	b := NewBuffer()
	var live []RowHandle
	appended, deleted := 0, 0

	for i := 0; i < 20; i++ {
		live = append(live, b.Append("T"))
		appended++
		if i%3 == 2 {
			if err := b.Delete(live[0]); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			live = live[1:]
			deleted++
		}
	}

	if want := appended - deleted; b.Len() != want {
		t.Errorf("Len() = %d, want %d", b.Len(), want)
	}

	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", b.Len())
	}
}

func TestBuffer_At(t *testing.T) {
	b := NewBuffer()
	b.Append("A")

	tests := []struct {
		name   string
		index  int
		wantOK bool
	}{
		{"first", 0, true},
		{"past end", 1, false},
		{"negative", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := b.At(tt.index); ok != tt.wantOK {
				t.Errorf("At(%d) ok = %v, want %v", tt.index, ok, tt.wantOK)
			}
		})
	}
}

func TestBuffer_RowsReturnsCopy(t *testing.T) {
	b := NewBuffer()
	b.Append("A")
	rows := b.Rows()
	rows[0].Token = "mutated"

	if r, _ := b.At(0); r.Token != "A" {
		t.Errorf("Rows() should return a copy, buffer token is now %q", r.Token)
	}
}
