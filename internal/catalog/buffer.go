package catalog

import (
	"fmt"

	"github.com/muurk/scantag/internal/apperr"
)

// RowHandle identifies a row for as long as it stays in the buffer.
// Handles are never reused within a Buffer, so a handle kept across a
// Delete or Clear is reported as not found instead of aliasing a new row.
type RowHandle uint64

// NoRow is the zero handle; it never refers to a live row.
const NoRow RowHandle = 0

// Row is a scanned token and the name assigned to it.
type Row struct {
	Handle RowHandle
	Token  string
	Name   string // Empty until a name is committed
}

// Named reports whether a name has been committed for the row.
func (r Row) Named() bool {
	return r.Name != ""
}

// Buffer is the ordered table of rows in arrival order.
// It is not safe for concurrent use.
type Buffer struct {
	rows []Row
	next RowHandle
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a row with an empty name at the end of the buffer.
func (b *Buffer) Append(token string) RowHandle {
	b.next++
	b.rows = append(b.rows, Row{Handle: b.next, Token: token})
	return b.next
}

// Clear removes every row.
func (b *Buffer) Clear() {
	b.rows = nil
}

// Delete removes the row identified by h.
func (b *Buffer) Delete(h RowHandle) error {
	i := b.IndexOf(h)
	if i < 0 {
		return apperr.NewNotFoundError(fmt.Sprintf("row %d does not exist", h))
	}
	b.rows = append(b.rows[:i], b.rows[i+1:]...)
	return nil
}

// Len returns the number of rows.
func (b *Buffer) Len() int {
	return len(b.rows)
}

// Rows returns a copy of the rows in arrival order.
func (b *Buffer) Rows() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// IndexOf returns the position of h, or -1.
func (b *Buffer) IndexOf(h RowHandle) int {
	if h == NoRow {
		return -1
	}
	for i, r := range b.rows {
		if r.Handle == h {
			return i
		}
	}
	return -1
}

// Get returns the row identified by h.
func (b *Buffer) Get(h RowHandle) (Row, bool) {
	i := b.IndexOf(h)
	if i < 0 {
		return Row{}, false
	}
	return b.rows[i], true
}

// At returns the row at position i.
func (b *Buffer) At(i int) (Row, bool) {
	if i < 0 || i >= len(b.rows) {
		return Row{}, false
	}
	return b.rows[i], true
}

func (b *Buffer) setName(h RowHandle, name string) bool {
	i := b.IndexOf(h)
	if i < 0 {
		return false
	}
	b.rows[i].Name = name
	return true
}
