package rewrite

import (
	"github.com/Aman-CERP/docsyn/pkg/query"
)

// Shape classifies the current value of a targeted condition field.
type Shape int

const (
	// Absent means the field is not present in the conditions.
	Absent Shape = iota
	// PlainString is an equality match on a non-empty string.
	PlainString
	// Membership is an {"$in": [...]} clause.
	Membership
	// TextSearch is a non-empty {"$text": {"$search": "..."}} phrase.
	TextSearch
	// Unrecognized is any other value; it is never rewritten.
	Unrecognized
)

// String returns the snake_case name of the shape.
func (s Shape) String() string {
	switch s {
	case Absent:
		return "absent"
	case PlainString:
		return "plain_string"
	case Membership:
		return "membership"
	case TextSearch:
		return "text_search"
	default:
		return "unrecognized"
	}
}

// Classify reports the shape of field within conds.
// Only query.TextSearchPath can classify as TextSearch; every other field
// name is a literal top-level key.
func Classify(conds query.Conditions, field string) Shape {
	if conds == nil {
		return Absent
	}

	if field == query.TextSearchPath {
		raw, ok := conds[query.OpText]
		if !ok {
			return Absent
		}
		text, ok := query.AsMap(raw)
		if !ok {
			return Unrecognized
		}
		if s, ok := text[query.OpSearch].(string); ok && s != "" {
			return TextSearch
		}
		return Unrecognized
	}

	raw, ok := conds[field]
	if !ok {
		return Absent
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return Unrecognized
		}
		return PlainString
	default:
		clause, ok := query.AsMap(v)
		if !ok {
			return Unrecognized
		}
		if _, ok := query.AsList(clause[query.OpIn]); ok {
			return Membership
		}
		return Unrecognized
	}
}
