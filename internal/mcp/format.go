package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatExpansions formats expand_terms output as markdown.
func FormatExpansions(out *ExpandTermsOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Expansions (%s)\n\n", out.Dictionary)
	for _, e := range out.Expansions {
		if !e.Matched {
			fmt.Fprintf(&sb, "- **%s**: _not in dictionary_\n", e.Term)
			continue
		}
		fmt.Fprintf(&sb, "- **%s**: %s\n", e.Term, strings.Join(e.Words, ", "))
	}
	return sb.String()
}

// FormatRewrite formats rewrite_conditions output as markdown with the
// rewritten conditions in a JSON block.
func FormatRewrite(out *RewriteConditionsOutput) string {
	var sb strings.Builder
	sb.WriteString("## Rewritten Conditions\n\n")
	for _, f := range out.Fields {
		fmt.Fprintf(&sb, "- `%s`: %s\n", f.Field, f.Shape)
	}

	data, err := json.MarshalIndent(out.Conditions, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%v", out.Conditions))
	}
	sb.WriteString("\n```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n")
	return sb.String()
}

// FormatTermList formats list_terms output as markdown.
func FormatTermList(out *ListTermsOutput) string {
	if out.Total == 0 {
		return fmt.Sprintf("No terms found in %s", out.Dictionary)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Terms in %s\n\n", out.Dictionary)
	fmt.Fprintf(&sb, "Showing %d of %d term", len(out.Terms), out.Total)
	if out.Total != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")
	for _, t := range out.Terms {
		fmt.Fprintf(&sb, "- **%s**: %s\n", t.Term, strings.Join(t.Words, ", "))
	}
	return sb.String()
}

// FormatStats formats rewrite_stats output as markdown.
func FormatStats(out *RewriteStatsOutput) string {
	if !out.Enabled {
		return "Rewrite telemetry is disabled."
	}

	var sb strings.Builder
	sb.WriteString("## Rewrite Statistics\n\n")
	fmt.Fprintf(&sb, "**Fields rewritten:** %d of %d (%.1f%%)\n", out.RewrittenFields, out.TotalFields, out.RewriteRatePct)
	fmt.Fprintf(&sb, "**Unmatched terms:** %d\n", out.UnmatchedTerms)
	if out.Since != "" {
		fmt.Fprintf(&sb, "**Since:** %s\n", out.Since)
	}
	if len(out.TopUnmatched) > 0 {
		sb.WriteString("\n### Top unmatched\n\n")
		for _, t := range out.TopUnmatched {
			fmt.Fprintf(&sb, "- %s (%d)\n", t.Term, t.Count)
		}
	}
	return sb.String()
}
