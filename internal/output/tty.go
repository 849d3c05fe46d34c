package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY checks if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// UseColor reports whether output to w should be colored.
func UseColor(w io.Writer) bool {
	return IsTTY(w) && !DetectNoColor()
}
