package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/scantag/internal/ports"
)

// Printer writes styled command output to a writer.
type Printer struct {
	out   io.Writer
	width int
	plain bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
		plain: w != os.Stdout || !IsTerminal(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintPorts prints one line per port with its USB details.
func (p *Printer) PrintPorts(list []ports.Port) {
	p.Println(RenderPorts(list))
}

// PrintNames prints a token/name listing sorted by token.
func (p *Printer) PrintNames(names map[string]string) {
	p.Println(RenderNames(names))
}

// PrintToken prints a token received by listen. Plain output is the bare
// token, one per line, so it can be piped.
func (p *Printer) PrintToken(at time.Time, token string) {
	if p.plain {
		p.Println(token)
		return
	}
	p.Println(TimestampStyle.Render(at.Format("15:04:05")) + "  " + TableCellStyle.Render(token))
}

// RenderPorts renders a port listing
func RenderPorts(list []ports.Port) string {
	if len(list) == 0 {
		return TableNoteStyle.Render("  (no serial ports found)")
	}

	nameWidth := len("PORT")
	for _, port := range list {
		if len(port.Name) > nameWidth {
			nameWidth = len(port.Name)
		}
	}

	lines := []string{TableHeaderStyle.Render(fmt.Sprintf("  %-*s  %s", nameWidth, "PORT", "DETAILS"))}
	for _, port := range list {
		name := TableCellStyle.Render(fmt.Sprintf("  %-*s", nameWidth, port.Name))
		lines = append(lines, name+"  "+TableNoteStyle.Render(port.Description()))
	}
	return strings.Join(lines, "\n")
}

// RenderNames renders token/name pairs sorted by token
func RenderNames(names map[string]string) string {
	if len(names) == 0 {
		return TableNoteStyle.Render("  (no names saved)")
	}

	tokens := make([]string, 0, len(names))
	tokenWidth := len("TOKEN")
	for token := range names {
		tokens = append(tokens, token)
		if w := lipgloss.Width(token); w > tokenWidth {
			tokenWidth = w
		}
	}
	sort.Strings(tokens)

	lines := []string{TableHeaderStyle.Render(fmt.Sprintf("  %-*s  %s", tokenWidth, "TOKEN", "NAME"))}
	for _, token := range tokens {
		pad := strings.Repeat(" ", tokenWidth-lipgloss.Width(token))
		lines = append(lines, TableCellStyle.Render("  "+token+pad+"  "+names[token]))
	}
	return strings.Join(lines, "\n")
}
