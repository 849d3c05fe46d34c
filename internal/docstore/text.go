package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

// textSearch is a parsed $search string.
//
// Quoted phrases are all required. Without phrases, any term matches.
// Terms prefixed with '-' exclude documents.
type textSearch struct {
	phrases []string
	terms   []string
	negated []string
}

func parseTextClause(v any) (*textSearch, error) {
	clause, ok := query.AsMap(v)
	if !ok {
		return nil, invalidQuery(fmt.Sprintf("$text needs an object, got %T", v))
	}
	for k := range clause {
		if k != query.OpSearch && k != "$language" && k != "$caseSensitive" {
			return nil, invalidQuery(fmt.Sprintf("unsupported $text option %q", k))
		}
	}
	s, ok := clause[query.OpSearch].(string)
	if !ok {
		return nil, invalidQuery("$text needs a $search string")
	}
	return parseSearch(s), nil
}

func parseSearch(s string) *textSearch {
	ts := &textSearch{}
	for {
		open := strings.IndexByte(s, '"')
		if open < 0 {
			break
		}
		ts.addWords(s[:open])
		rest := s[open+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			end = len(rest)
		}
		if phrase := strings.TrimSpace(rest[:end]); phrase != "" {
			ts.phrases = append(ts.phrases, phrase)
		}
		if end == len(rest) {
			s = ""
		} else {
			s = rest[end+1:]
		}
	}
	ts.addWords(s)
	return ts
}

func (ts *textSearch) addWords(s string) {
	for _, w := range strings.Fields(s) {
		if len(w) > 1 && w[0] == '-' {
			ts.negated = append(ts.negated, w[1:])
			continue
		}
		ts.terms = append(ts.terms, w)
	}
}

// searchText returns the IDs of documents the search selects.
// A search with only negated terms selects nothing. c.mu must be held.
func (c *Collection) searchText(ctx context.Context, ts *textSearch) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	if len(ts.phrases) == 0 && len(ts.terms) == 0 {
		return ids, nil
	}

	boolean := bleve.NewBooleanQuery()
	if len(ts.phrases) > 0 {
		for _, p := range ts.phrases {
			boolean.AddMust(c.fieldsQuery(p, true))
		}
	} else {
		terms := make([]bq.Query, 0, len(ts.terms))
		for _, t := range ts.terms {
			terms = append(terms, c.fieldsQuery(t, false))
		}
		boolean.AddMust(bleve.NewDisjunctionQuery(terms...))
	}
	for _, n := range ts.negated {
		boolean.AddMustNot(c.fieldsQuery(n, false))
	}

	count, err := c.index.DocCount()
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeIndexFailed, "failed to count indexed documents", err)
	}
	if count == 0 {
		return ids, nil
	}

	req := bleve.NewSearchRequest(boolean)
	req.Size = int(count)
	res, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeIndexFailed, "text search failed", err)
	}
	for _, hit := range res.Hits {
		ids[hit.ID] = struct{}{}
	}
	return ids, nil
}

// fieldsQuery matches text in any configured text field.
func (c *Collection) fieldsQuery(text string, phrase bool) bq.Query {
	perField := make([]bq.Query, 0, len(c.textFields))
	for _, field := range c.textFields {
		if phrase {
			q := bleve.NewMatchPhraseQuery(text)
			q.SetField(field)
			perField = append(perField, q)
			continue
		}
		q := bleve.NewMatchQuery(text)
		q.SetField(field)
		perField = append(perField, q)
	}
	return bleve.NewDisjunctionQuery(perField...)
}

// joinText joins multiple values of one field into one indexed text.
func joinText(parts []string) string {
	return strings.Join(parts, " ")
}
