package mcp

// ExpandTermsInput defines the input schema for the expand_terms tool.
type ExpandTermsInput struct {
	Terms []string `json:"terms" jsonschema:"words or phrases to expand with the active dictionary"`
}

// ExpandTermsOutput defines the output schema for the expand_terms tool.
type ExpandTermsOutput struct {
	Dictionary string          `json:"dictionary"`
	Expansions []TermExpansion `json:"expansions"`
}

// TermExpansion is one term with the words it expands to.
type TermExpansion struct {
	Term    string   `json:"term"`
	Words   []string `json:"words"`
	Matched bool     `json:"matched" jsonschema:"false when the dictionary does not know the term"`
}

// RewriteConditionsInput defines the input schema for the rewrite_conditions tool.
type RewriteConditionsInput struct {
	Conditions map[string]any `json:"conditions" jsonschema:"query condition object to rewrite"`
	Fields     []string       `json:"fields,omitempty" jsonschema:"field paths to rewrite, defaults to the configured fields"`
}

// RewriteConditionsOutput defines the output schema for the rewrite_conditions tool.
type RewriteConditionsOutput struct {
	Conditions map[string]any `json:"conditions"`
	Fields     []FieldShape   `json:"fields"`
}

// FieldShape reports how a targeted field was classified before rewriting.
type FieldShape struct {
	Field string `json:"field"`
	Shape string `json:"shape" jsonschema:"absent, plain_string, membership, text_search or unrecognized"`
}

// ListTermsInput defines the input schema for the list_terms tool.
type ListTermsInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"only list lookup keys starting with this prefix"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of terms, default 100"`
}

// ListTermsOutput defines the output schema for the list_terms tool.
type ListTermsOutput struct {
	Dictionary string          `json:"dictionary"`
	Total      int             `json:"total"`
	Truncated  bool            `json:"truncated"`
	Terms      []TermExpansion `json:"terms"`
}

// RewriteStatsInput defines the input schema for the rewrite_stats tool (no parameters).
type RewriteStatsInput struct{}

// RewriteStatsOutput defines the output schema for the rewrite_stats tool.
type RewriteStatsOutput struct {
	Enabled         bool             `json:"enabled"`
	ShapeCounts     map[string]int64 `json:"shape_counts,omitempty"`
	FieldCounts     map[string]int64 `json:"field_counts,omitempty"`
	TopUnmatched    []UnmatchedTerm  `json:"top_unmatched,omitempty"`
	RecentUnmatched []string         `json:"recent_unmatched,omitempty"`
	TotalFields     int64            `json:"total_fields"`
	RewrittenFields int64            `json:"rewritten_fields"`
	RewriteRatePct  float64          `json:"rewrite_rate_pct"`
	UnmatchedTerms  int64            `json:"unmatched_terms"`
	Since           string           `json:"since,omitempty"`
}

// UnmatchedTerm is a term the dictionary did not know and how often it was seen.
type UnmatchedTerm struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}
