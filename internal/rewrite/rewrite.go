// Package rewrite expands query conditions with dictionary synonyms before a
// query runs.
//
// For every configured field the rewriter classifies the current value and
// rewrites it so that any synonym matches, not only the literal term:
//
//	{"firstName": "victor"}                  -> {"firstName": {"$in": ["victor", "vick", "vic"]}}
//	{"alias": {"$in": ["david", "foo"]}}     -> {"alias": {"$in": ["david", "dave", "davy", "vida", "foo"]}}
//	{"$text": {"$search": "victor david"}}   -> {"$text": {"$search": "victor vick vic david dave davy vida"}}
//
// Unknown terms are kept as they are. Rewriting never fails.
package rewrite

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/internal/stem"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

// DefaultFields is the field specification used when none is given.
var DefaultFields = []string{query.TextSearchPath}

// Recorder observes rewrites. Implementations must be safe for concurrent use.
type Recorder interface {
	// RecordField is called once per targeted field with its shape.
	RecordField(field string, shape Shape)
	// RecordUnmatched is called for every term absent from the dictionary.
	RecordUnmatched(term string)
}

// Rewriter substitutes synonym sets into query conditions.
// It holds no mutable state and may be shared across goroutines.
type Rewriter struct {
	dict     *synonyms.Dictionary
	fields   []string
	norm     synonyms.Normalizer
	normSet  bool
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithStemmer stems lookup keys after lowercasing. Without it the rewriter
// normalizes the way the dictionary was built. A nil stemmer disables stemming.
func WithStemmer(s stem.Stemmer) Option {
	return func(r *Rewriter) {
		r.norm = synonyms.Normalizer{Stemmer: s}
		r.normSet = true
	}
}

// WithRecorder reports classifications and unmatched terms to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Rewriter) {
		r.recorder = rec
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Rewriter) {
		r.logger = l
	}
}

// New creates a rewriter for the given fields. Empty fields select DefaultFields.
// A nil dictionary leaves every term as it is.
func New(dict *synonyms.Dictionary, fields []string, opts ...Option) *Rewriter {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	r := &Rewriter{
		dict:   dict,
		fields: append([]string(nil), fields...),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.normSet && dict != nil {
		r.norm = dict.Normalizer()
	}
	return r
}

// AddSynonyms returns a pre-execution hook that rewrites conditions with dict
// and then continues.
func AddSynonyms(dict *synonyms.Dictionary, fields []string, opts ...Option) hooks.Hook {
	return New(dict, fields, opts...).Hook()
}

// Hook adapts the rewriter to the hook surface. The continuation is called
// exactly once, after rewriting, whether or not any field matched.
func (r *Rewriter) Hook() hooks.Hook {
	return func(_ context.Context, conds query.Conditions, next hooks.Next) error {
		r.Apply(conds)
		return next()
	}
}

// Fields returns the targeted field paths.
func (r *Rewriter) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Dictionary returns the dictionary the rewriter expands with.
func (r *Rewriter) Dictionary() *synonyms.Dictionary {
	return r.dict
}

// Apply rewrites conds in place. Nil conditions are ignored.
func (r *Rewriter) Apply(conds query.Conditions) {
	if conds == nil {
		return
	}

	rewritten := 0
	for _, field := range r.fields {
		shape := Classify(conds, field)
		if r.recorder != nil {
			r.recorder.RecordField(field, shape)
		}

		switch shape {
		case TextSearch:
			text, _ := query.AsMap(conds[query.OpText])
			text[query.OpSearch] = r.expandPhrase(text[query.OpSearch].(string))
		case PlainString:
			conds[field] = map[string]any{query.OpIn: r.expandList([]any{conds[field]})}
		case Membership:
			clause, _ := query.AsMap(conds[field])
			list, _ := query.AsList(clause[query.OpIn])
			clause[query.OpIn] = r.expandList(list)
		default:
			continue
		}
		rewritten++
	}

	if rewritten > 0 {
		r.logger.Debug("conditions_rewritten",
			slog.Int("fields", rewritten),
			slog.String("dictionary", r.dictName()))
	}
}

// Lookup returns a copy of the synonyms of word, normalized the way Apply
// normalizes query terms. Lookups are not reported to the Recorder.
func (r *Rewriter) Lookup(word string) ([]string, bool) {
	if r.dict == nil {
		return nil, false
	}
	syns, ok := r.dict.Lookup(r.norm.Key(word))
	if !ok {
		return nil, false
	}
	return append([]string(nil), syns...), true
}

// Expand returns the synonyms of word, or a singleton of word itself.
// Like Lookup it leaves the Recorder untouched.
func (r *Rewriter) Expand(word string) []string {
	if syns, ok := r.Lookup(word); ok {
		return syns
	}
	return []string{word}
}

// expand is Expand for query rewriting; misses count as unmatched terms.
func (r *Rewriter) expand(word string) []string {
	if syns, ok := r.Lookup(word); ok {
		return syns
	}
	if r.recorder != nil {
		r.recorder.RecordUnmatched(word)
	}
	return []string{word}
}

// expandPhrase replaces every whitespace-separated token with its
// space-joined expansion.
func (r *Rewriter) expandPhrase(phrase string) string {
	tokens := strings.Fields(phrase)
	for i, tok := range tokens {
		tokens[i] = strings.Join(r.expand(tok), " ")
	}
	return strings.Join(tokens, " ")
}

// expandList flattens the expansions of every string in list, keeping
// first-seen order and dropping repeated strings. Other values pass through.
func (r *Rewriter) expandList(list []any) []any {
	out := make([]any, 0, len(list)*3)
	seen := make(map[string]struct{}, len(list)*3)
	for _, item := range list {
		word, ok := item.(string)
		if !ok {
			out = append(out, item)
			continue
		}
		for _, syn := range r.expand(word) {
			if _, dup := seen[syn]; dup {
				continue
			}
			seen[syn] = struct{}{}
			out = append(out, syn)
		}
	}
	return out
}

func (r *Rewriter) dictName() string {
	if r.dict == nil {
		return ""
	}
	return r.dict.Name()
}
