package catalog

import (
	"fmt"

	"github.com/muurk/scantag/internal/apperr"
)

// Validation messages returned by CommitName.
const (
	MsgNoSelection = "no selection"
	MsgEmptyName   = "empty name"
)

// Editor binds the selected row to the name input and keeps the Buffer and
// the NameMap in sync. It is the only component that mutates either.
type Editor struct {
	buffer   *Buffer
	names    *NameMap
	selected RowHandle
	input    string
}

// NewEditor creates an editor over an empty buffer and map.
func NewEditor() *Editor {
	return &Editor{
		buffer: NewBuffer(),
		names:  NewNameMap(),
	}
}

// Buffer exposes the rows for reading.
func (e *Editor) Buffer() *Buffer { return e.buffer }

// Names exposes the name map for reading.
func (e *Editor) Names() *NameMap { return e.names }

// Append records a token received from the device. The selection is left as is.
func (e *Editor) Append(token string) RowHandle {
	return e.buffer.Append(token)
}

// Select makes h the selected row.
func (e *Editor) Select(h RowHandle) error {
	if e.buffer.IndexOf(h) < 0 {
		return apperr.NewNotFoundError(fmt.Sprintf("row %d does not exist", h))
	}
	e.selected = h
	return nil
}

// SelectIndex selects the row at position i.
func (e *Editor) SelectIndex(i int) error {
	row, ok := e.buffer.At(i)
	if !ok {
		return apperr.NewNotFoundError(fmt.Sprintf("no row at position %d", i))
	}
	e.selected = row.Handle
	return nil
}

// ClearSelection unsets the selection.
func (e *Editor) ClearSelection() {
	e.selected = NoRow
}

// Selected returns the selected row, if any.
func (e *Editor) Selected() (Row, bool) {
	return e.buffer.Get(e.selected)
}

// SelectedIndex returns the position of the selected row, or -1.
func (e *Editor) SelectedIndex() int {
	return e.buffer.IndexOf(e.selected)
}

// SetInput replaces the pending name input.
func (e *Editor) SetInput(s string) { e.input = s }

// Input returns the pending name input.
func (e *Editor) Input() string { return e.input }

// CommitName assigns name to the selected row. On success the input is
// cleared and the selection advances to the next row, or is unset when the
// committed row was the last one. On failure nothing changes.
func (e *Editor) CommitName(name string) (Row, error) {
	row, ok := e.Selected()
	if !ok {
		return Row{}, apperr.NewValidationError(MsgNoSelection)
	}
	if name == "" {
		return Row{}, apperr.NewValidationError(MsgEmptyName)
	}

	e.buffer.setName(row.Handle, name)
	e.names.Set(row.Token, name)
	e.input = ""
	row.Name = name

	if next, ok := e.buffer.At(e.buffer.IndexOf(row.Handle) + 1); ok {
		e.selected = next.Handle
	} else {
		e.selected = NoRow
	}
	return row, nil
}

// CommitInput commits the pending input as the selected row's name.
func (e *Editor) CommitInput() (Row, error) {
	return e.CommitName(e.input)
}

// DeleteSelected removes the selected row and its token's map entry. The
// entry is removed whether or not this row was the one that named it.
func (e *Editor) DeleteSelected() (Row, error) {
	row, ok := e.Selected()
	if !ok {
		return Row{}, apperr.NewSelectionError("no row selected")
	}
	if err := e.buffer.Delete(row.Handle); err != nil {
		return Row{}, err
	}
	e.names.Remove(row.Token)
	e.selected = NoRow
	return row, nil
}

// Clear empties the buffer and the map and unsets the selection.
func (e *Editor) Clear() {
	e.buffer.Clear()
	e.names.Clear()
	e.selected = NoRow
}
