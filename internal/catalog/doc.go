// Package catalog holds the in-memory state of a scanning session: the
// ordered table of scanned rows (Buffer), the token→name mapping that gets
// persisted (NameMap), and the Editor that keeps the two in sync.
//
// The Buffer and the NameMap are separate structures. The Buffer keeps
// every scanned row, named or not, in arrival order, and allows duplicate
// tokens. The NameMap only holds committed names, keyed by token, so
// duplicate tokens collapse to a single entry and unnamed rows never reach
// the output file.
//
// # Selection and auto-advance
//
// The Editor tracks one selected row. Committing a name for it moves the
// selection to the next row, so an operator can scan a batch and then walk
// down the list typing names:
//
//	ed := catalog.NewEditor()
//	first := ed.Append("ABC123")
//	ed.Append("XYZ789")
//	_ = ed.Select(first)
//	_, _ = ed.CommitName("Widget") // "XYZ789" is now selected
//
// Committing on the last row leaves nothing selected.
//
// Nothing in this package is safe for concurrent use; it is owned by the UI
// event loop.
package catalog
