package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatExpansions(t *testing.T) {
	got := FormatExpansions(&ExpandTermsOutput{
		Dictionary: "nicknames",
		Expansions: []TermExpansion{
			{Term: "victor", Words: []string{"victor", "vick", "vic"}, Matched: true},
			{Term: "zed", Words: []string{"zed"}},
		},
	})

	assert.Equal(t, "## Expansions (nicknames)\n\n- **victor**: victor, vick, vic\n- **zed**: _not in dictionary_\n", got)
}

func TestFormatRewrite(t *testing.T) {
	got := FormatRewrite(&RewriteConditionsOutput{
		Conditions: map[string]any{"name": map[string]any{"$in": []any{"vic"}}},
		Fields:     []FieldShape{{Field: "name", Shape: "plain_string"}},
	})

	assert.Contains(t, got, "- `name`: plain_string\n")
	assert.Contains(t, got, "```json\n{\n  \"name\": {\n    \"$in\": [\n      \"vic\"\n    ]\n  }\n}\n```\n")
}

func TestFormatTermList(t *testing.T) {
	assert.Equal(t, "No terms found in nicknames", FormatTermList(&ListTermsOutput{Dictionary: "nicknames"}))

	got := FormatTermList(&ListTermsOutput{
		Dictionary: "nicknames",
		Total:      1,
		Terms:      []TermExpansion{{Term: "vic", Words: []string{"victor", "vick", "vic"}}},
	})
	assert.Contains(t, got, "Showing 1 of 1 term\n")
	assert.Contains(t, got, "- **vic**: victor, vick, vic")
}

func TestFormatStats(t *testing.T) {
	assert.Equal(t, "Rewrite telemetry is disabled.", FormatStats(&RewriteStatsOutput{}))

	got := FormatStats(&RewriteStatsOutput{
		Enabled:         true,
		TotalFields:     4,
		RewrittenFields: 3,
		RewriteRatePct:  75,
		UnmatchedTerms:  2,
		TopUnmatched:    []UnmatchedTerm{{Term: "zed", Count: 2}},
	})
	assert.Contains(t, got, "**Fields rewritten:** 3 of 4 (75.0%)")
	assert.Contains(t, got, "- zed (2)")
}
