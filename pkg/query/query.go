package query

import "strings"

// Operator names understood by the rewriter and the document store.
const (
	OpIn     = "$in"
	OpText   = "$text"
	OpSearch = "$search"
)

// TextSearchPath is the field path designating the full-text search string.
const TextSearchPath = OpText + "." + OpSearch

// Conditions is a mutable query condition object.
// Nested objects may be Conditions or plain map[string]any (as produced by
// encoding/json), membership lists may be []any or []string.
type Conditions map[string]any

// Document is a stored document. The "_id" key holds its identifier.
type Document map[string]any

// IDField is the document identifier key.
const IDField = "_id"

// ID returns the document identifier, or "" if unset.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// AsMap returns v as a map when it is Conditions, Document or map[string]any.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Conditions:
		return map[string]any(m), true
	case Document:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

// AsList returns v as a []any when it is []any or []string.
// A []string is copied into a new []any.
func AsList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// In builds a membership clause.
func In(values ...string) map[string]any {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return map[string]any{OpIn: list}
}

// TextSearch builds a full-text search clause.
func TextSearch(phrase string) map[string]any {
	return map[string]any{OpSearch: phrase}
}

// IsOperator reports whether key names a query operator.
func IsOperator(key string) bool {
	return strings.HasPrefix(key, "$")
}
