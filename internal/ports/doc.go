// Package ports lists the serial ports a scanner could be attached to.
//
// Candidates come from fixed per-platform rules:
//   - Windows: COM1 through COM256
//   - Linux: /dev/tty[A-Za-z]*
//   - macOS: /dev/tty.*
//
// Each candidate is opened and closed again; only ports that open are
// returned, in the order they were found. Any other platform fails with an
// apperr PlatformUnsupported error.
//
// When the OS enumerator knows a port it is annotated with USB vendor,
// product and serial number, which the port picker shows next to the name.
package ports
