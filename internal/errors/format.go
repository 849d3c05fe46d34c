package errors

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI formats an error for terminal display.
// Non-DocsynError values are wrapped as internal errors.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	de, ok := err.(*DocsynError)
	if !ok {
		de = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", de.Message)
	if de.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", de.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", de.Code)
	return sb.String()
}

// LogAttrs returns slog attributes describing err.
// Details are emitted as detail_<key> in sorted key order.
func LogAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	de, ok := err.(*DocsynError)
	if !ok {
		return []slog.Attr{slog.String("error", err.Error())}
	}

	attrs := []slog.Attr{
		slog.String("error_code", de.Code),
		slog.String("message", de.Message),
		slog.String("category", string(de.Category)),
		slog.String("severity", string(de.Severity)),
	}
	if de.Cause != nil {
		attrs = append(attrs, slog.String("cause", de.Cause.Error()))
	}

	keys := make([]string, 0, len(de.Details))
	for k := range de.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String("detail_"+k, de.Details[k]))
	}
	return attrs
}
