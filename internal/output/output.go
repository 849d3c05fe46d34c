// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer that colors output only on a terminal without
// NO_COLOR set.
func New(out io.Writer) *Writer {
	return &Writer{out: out, styles: GetStyles(!UseColor(out))}
}

// NewPlain creates a Writer that never colors output.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out, styles: NoColorStyles()}
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer { return w.out }

// Styles returns the active styles.
func (w *Writer) Styles() Styles { return w.styles }

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", w.styles.Success.Render(msg))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", w.styles.Warning.Render(msg))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", w.styles.Error.Render(msg))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Header prints a section header.
func (w *Writer) Header(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(msg))
}

// KeyValue prints an aligned "key: value" line.
func (w *Writer) KeyValue(key string, value any) {
	_, _ = fmt.Fprintf(w.out, "  %s %v\n", w.styles.Label.Render(fmt.Sprintf("%-14s", key+":")), value)
}

// Expansion prints a term followed by the words it expands to.
func (w *Writer) Expansion(term string, words []string) {
	_, _ = fmt.Fprintf(w.out, "%s %s %s\n",
		w.styles.Term.Render(term),
		w.styles.Dim.Render("→"),
		strings.Join(words, ", "))
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Panel prints content inside a bordered box. Plain writers print the
// content unchanged.
func (w *Writer) Panel(content string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Panel.Render(content))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
