package docstore

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"sort"
	"strings"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

// Field operators supported besides query.OpIn.
const (
	opEq     = "$eq"
	opNe     = "$ne"
	opNin    = "$nin"
	opExists = "$exists"
)

type predicate func(doc map[string]any) bool

// match returns copies of the documents matching conds. limit <= 0 means all.
func (c *Collection) match(ctx context.Context, conds query.Conditions, limit int) ([]query.Document, error) {
	preds, text, err := compile(conds)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, derrors.InternalError("collection is closed", nil)
	}

	var allowed map[string]struct{}
	if text != nil {
		if allowed, err = c.searchText(ctx, text); err != nil {
			return nil, err
		}
	}

	var out []query.Document
	for _, doc := range c.docs {
		if allowed != nil {
			if _, ok := allowed[doc.ID()]; !ok {
				continue
			}
		}
		if !matchesAll(preds, doc) {
			continue
		}
		out = append(out, maps.Clone(doc))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func matchesAll(preds []predicate, doc query.Document) bool {
	for _, p := range preds {
		if !p(map[string]any(doc)) {
			return false
		}
	}
	return true
}

// compile turns conds into field predicates plus an optional text search.
// Keys are compiled in sorted order so errors are deterministic.
func compile(conds query.Conditions) ([]predicate, *textSearch, error) {
	keys := make([]string, 0, len(conds))
	for k := range conds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		preds []predicate
		text  *textSearch
	)
	for _, key := range keys {
		v := conds[key]
		if key == query.OpText {
			ts, err := parseTextClause(v)
			if err != nil {
				return nil, nil, err
			}
			text = ts
			continue
		}
		if query.IsOperator(key) {
			return nil, nil, invalidQuery(fmt.Sprintf("unsupported top-level operator %q", key))
		}
		p, err := compileField(key, v)
		if err != nil {
			return nil, nil, err
		}
		preds = append(preds, p)
	}
	return preds, text, nil
}

func compileField(path string, v any) (predicate, error) {
	clause, ok := query.AsMap(v)
	if !ok || !hasOperator(clause) {
		return func(doc map[string]any) bool { return anyEqual(valuesAt(doc, path), v) }, nil
	}

	ops := make([]string, 0, len(clause))
	for op := range clause {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	var preds []predicate
	for _, op := range ops {
		arg := clause[op]
		switch op {
		case opEq:
			preds = append(preds, func(doc map[string]any) bool { return anyEqual(valuesAt(doc, path), arg) })
		case opNe:
			preds = append(preds, func(doc map[string]any) bool { return !anyEqual(valuesAt(doc, path), arg) })
		case query.OpIn, opNin:
			list, ok := query.AsList(arg)
			if !ok {
				return nil, invalidQuery(fmt.Sprintf("%s of %q needs an array, got %T", op, path, arg))
			}
			negate := op == opNin
			preds = append(preds, func(doc map[string]any) bool {
				values := valuesAt(doc, path)
				for _, want := range list {
					if anyEqual(values, want) {
						return !negate
					}
				}
				return negate
			})
		case opExists:
			want, ok := arg.(bool)
			if !ok {
				return nil, invalidQuery(fmt.Sprintf("$exists of %q needs a boolean, got %T", path, arg))
			}
			preds = append(preds, func(doc map[string]any) bool { return hasPath(doc, path) == want })
		default:
			if query.IsOperator(op) {
				return nil, invalidQuery(fmt.Sprintf("unsupported operator %q on %q", op, path))
			}
			return nil, invalidQuery(fmt.Sprintf("condition on %q mixes operators and fields", path))
		}
	}

	return func(doc map[string]any) bool {
		for _, p := range preds {
			if !p(doc) {
				return false
			}
		}
		return true
	}, nil
}

func hasOperator(m map[string]any) bool {
	for k := range m {
		if query.IsOperator(k) {
			return true
		}
	}
	return false
}

func invalidQuery(msg string) error {
	return derrors.New(derrors.ErrCodeInvalidQuery, msg, nil)
}

// valuesAt resolves a dotted path, descending into arrays along the way.
// Arrays found at the end of the path are returned as-is and also expanded,
// so both whole-array and element equality can match.
func valuesAt(doc map[string]any, path string) []any {
	current := []any{doc}
	for _, part := range strings.Split(path, ".") {
		var next []any
		for _, v := range current {
			next = append(next, child(v, part)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}

	out := make([]any, 0, len(current))
	for _, v := range current {
		out = append(out, v)
		if list, ok := query.AsList(v); ok {
			out = append(out, list...)
		}
	}
	return out
}

func child(v any, key string) []any {
	if m, ok := query.AsMap(v); ok {
		if c, ok := m[key]; ok {
			return []any{c}
		}
		return nil
	}
	if list, ok := query.AsList(v); ok {
		var out []any
		for _, item := range list {
			out = append(out, child(item, key)...)
		}
		return out
	}
	return nil
}

func hasPath(doc map[string]any, path string) bool {
	return len(valuesAt(doc, path)) > 0
}

func anyEqual(values []any, want any) bool {
	if want == nil && len(values) == 0 {
		return true
	}
	for _, v := range values {
		if equal(v, want) {
			return true
		}
	}
	return false
}

// equal compares scalars by value, treating every numeric type alike.
func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ma, ok := query.AsMap(a); ok {
		mb, ok := query.AsMap(b)
		return ok && reflect.DeepEqual(ma, mb)
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
