package rewrite

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsyn/internal/hooks"
	"github.com/Aman-CERP/docsyn/internal/stem"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

var nicknames = synonyms.Source{
	"victor": {"vick", "vic"},
	"david":  {"dave", "davy", "vida"},
}

func nicknameDict() *synonyms.Dictionary {
	return synonyms.Build("nicknames", nicknames, synonyms.Options{})
}

type recorder struct {
	mu        sync.Mutex
	shapes    map[string]Shape
	unmatched []string
}

func newRecorder() *recorder {
	return &recorder{shapes: map[string]Shape{}}
}

func (r *recorder) RecordField(field string, shape Shape) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes[field] = shape
}

func (r *recorder) RecordUnmatched(term string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmatched = append(r.unmatched, term)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		conds query.Conditions
		field string
		want  Shape
	}{
		{"nil conditions", nil, "name", Absent},
		{"missing field", query.Conditions{"other": "x"}, "name", Absent},
		{"plain string", query.Conditions{"name": "victor"}, "name", PlainString},
		{"empty string", query.Conditions{"name": ""}, "name", Unrecognized},
		{"membership any", query.Conditions{"name": map[string]any{"$in": []any{"a"}}}, "name", Membership},
		{"membership strings", query.Conditions{"name": map[string]any{"$in": []string{"a"}}}, "name", Membership},
		{"membership conditions", query.Conditions{"name": query.Conditions{"$in": []any{}}}, "name", Membership},
		{"other operator", query.Conditions{"name": map[string]any{"$gt": "a"}}, "name", Unrecognized},
		{"number", query.Conditions{"age": 42}, "age", Unrecognized},
		{"text search", query.Conditions{"$text": map[string]any{"$search": "victor"}}, query.TextSearchPath, TextSearch},
		{"text search missing", query.Conditions{"name": "x"}, query.TextSearchPath, Absent},
		{"text search empty", query.Conditions{"$text": map[string]any{"$search": ""}}, query.TextSearchPath, Unrecognized},
		{"text search not a map", query.Conditions{"$text": "victor"}, query.TextSearchPath, Unrecognized},
		{"text search not a string", query.Conditions{"$text": map[string]any{"$search": 3}}, query.TextSearchPath, Unrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.conds, tt.field))
		})
	}
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "plain_string", PlainString.String())
	assert.Equal(t, "membership", Membership.String())
	assert.Equal(t, "text_search", TextSearch.String())
	assert.Equal(t, "unrecognized", Unrecognized.String())
}

func TestApply_PlainStringBecomesMembership(t *testing.T) {
	conds := query.Conditions{"firstName": "victor", "lastName": "hugo"}

	New(nicknameDict(), []string{"firstName"}).Apply(conds)

	clause, ok := query.AsMap(conds["firstName"])
	require.True(t, ok)
	assert.Equal(t, []any{"victor", "vick", "vic"}, clause[query.OpIn])
	assert.Equal(t, "hugo", conds["lastName"], "untargeted fields are untouched")
}

func TestApply_PlainStringUnknownIsSingleton(t *testing.T) {
	conds := query.Conditions{"firstName": "zed"}

	New(nicknameDict(), []string{"firstName"}).Apply(conds)

	assert.Equal(t, map[string]any{query.OpIn: []any{"zed"}}, conds["firstName"])
}

func TestApply_MembershipExpandsEachElement(t *testing.T) {
	conds := query.Conditions{"alias": map[string]any{"$in": []any{"victor", "david", "foo"}}}

	New(nicknameDict(), []string{"alias"}).Apply(conds)

	clause, _ := query.AsMap(conds["alias"])
	assert.Equal(t,
		[]any{"victor", "vick", "vic", "david", "dave", "davy", "vida", "foo"},
		clause[query.OpIn])
}

func TestApply_MembershipKeepsOtherOperatorsAndValues(t *testing.T) {
	conds := query.Conditions{"alias": map[string]any{
		"$in":  []any{"vic", 7, nil},
		"$nin": []any{"bob"},
	}}

	New(nicknameDict(), []string{"alias"}).Apply(conds)

	clause, _ := query.AsMap(conds["alias"])
	assert.Equal(t, []any{"victor", "vick", "vic", 7, nil}, clause[query.OpIn])
	assert.Equal(t, []any{"bob"}, clause["$nin"])
}

func TestApply_MembershipDropsRepeatedWords(t *testing.T) {
	conds := query.Conditions{"alias": map[string]any{"$in": []string{"victor", "vic"}}}

	New(nicknameDict(), []string{"alias"}).Apply(conds)

	clause, _ := query.AsMap(conds["alias"])
	assert.Equal(t, []any{"victor", "vick", "vic"}, clause[query.OpIn])
}

func TestApply_TextSearch(t *testing.T) {
	conds := query.Conditions{"$text": map[string]any{"$search": "victor david"}}

	New(nicknameDict(), nil).Apply(conds)

	text, _ := query.AsMap(conds["$text"])
	assert.Equal(t, "victor vick vic david dave davy vida", text["$search"])
}

func TestApply_TextSearchKeepsUnknownTokensAndCollapsesWhitespace(t *testing.T) {
	conds := query.Conditions{"$text": map[string]any{"$search": "  hello\tvic  world "}}

	New(nicknameDict(), nil).Apply(conds)

	text, _ := query.AsMap(conds["$text"])
	assert.Equal(t, "hello victor vick vic world", text["$search"])
}

func TestApply_KeyOnlyQuoteMatch(t *testing.T) {
	src := synonyms.Source{"University of Michigan": {"umich", "u of m"}}
	dict := synonyms.Build("universities", src, synonyms.Options{KeyOnly: true, QuoteMatch: true})
	conds := query.Conditions{"$text": map[string]any{"$search": "foo umich bar"}}

	New(dict, nil).Apply(conds)

	text, _ := query.AsMap(conds["$text"])
	assert.Equal(t, `foo "University of Michigan" bar`, text["$search"])
}

func TestApply_StemmedLookup(t *testing.T) {
	src := synonyms.Source{"quick": {"rapid", "fast"}}
	dict := synonyms.Build("speed", src, synonyms.Options{Stem: true})
	conds := query.Conditions{"$text": map[string]any{"$search": "quickly"}}

	New(dict, nil).Apply(conds)

	text, _ := query.AsMap(conds["$text"])
	assert.Equal(t, "quick rapid fast", text["$search"])
}

func TestApply_StemmedSentence(t *testing.T) {
	src := synonyms.Source{
		"quick": {"rapid", "fast"},
		"jumps": {"hops", "skips"},
		"over":  {"above"},
		"lazy":  {"idle", "sluggish"},
	}
	snowball, err := stem.New(stem.Snowball)
	require.NoError(t, err)
	dict := synonyms.Build("pangram", src, synonyms.Options{Stem: true, Stemmer: snowball})
	conds := query.Conditions{"$text": map[string]any{
		"$search": "The rapidly hopping fox skipped over the idling dog.",
	}}

	New(dict, nil, WithStemmer(snowball)).Apply(conds)

	text, _ := query.AsMap(conds["$text"])
	assert.Equal(t,
		"The quick rapid fast jumps hops skips fox jumps hops skips over above the lazy idle sluggish dog.",
		text["$search"])
}

func TestApply_WithStemmerOverridesDictionaryNormalizer(t *testing.T) {
	src := synonyms.Source{"quick": {"rapid"}}
	dict := synonyms.Build("speed", src, synonyms.Options{Stem: true})
	conds := query.Conditions{"word": "quickly"}

	New(dict, []string{"word"}, WithStemmer(nil)).Apply(conds)

	assert.Equal(t, map[string]any{query.OpIn: []any{"quickly"}}, conds["word"])
}

func TestApply_UnrecognizedIsUntouched(t *testing.T) {
	original := map[string]any{"$regex": "^vic"}
	conds := query.Conditions{"name": original, "age": 30}

	New(nicknameDict(), []string{"name", "age", "missing"}).Apply(conds)

	assert.Equal(t, query.Conditions{"name": map[string]any{"$regex": "^vic"}, "age": 30}, conds)
}

func TestApply_NilConditions(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nicknameDict(), []string{"name"}).Apply(nil)
	})
}

func TestApply_NilDictionaryFallsBack(t *testing.T) {
	conds := query.Conditions{"name": "victor"}

	New(nil, []string{"name"}).Apply(conds)

	assert.Equal(t, map[string]any{query.OpIn: []any{"victor"}}, conds["name"])
}

func TestApply_MultipleFields(t *testing.T) {
	conds := query.Conditions{
		"first": "vic",
		"$text": map[string]any{"$search": "dave"},
	}

	New(nicknameDict(), []string{query.TextSearchPath, "first"}).Apply(conds)

	text, _ := query.AsMap(conds["$text"])
	assert.Equal(t, "david dave davy vida", text["$search"])
	assert.Equal(t, map[string]any{query.OpIn: []any{"victor", "vick", "vic"}}, conds["first"])
}

func TestNew_DefaultFields(t *testing.T) {
	r := New(nicknameDict(), nil)
	assert.Equal(t, []string{query.TextSearchPath}, r.Fields())
	assert.Equal(t, "nicknames", r.Dictionary().Name())
}

func TestRewriter_Recorder(t *testing.T) {
	rec := newRecorder()
	conds := query.Conditions{
		"first": "vic",
		"$text": map[string]any{"$search": "victor unknown"},
	}

	New(nicknameDict(), []string{query.TextSearchPath, "first", "last"}, WithRecorder(rec)).Apply(conds)

	assert.Equal(t, TextSearch, rec.shapes[query.TextSearchPath])
	assert.Equal(t, PlainString, rec.shapes["first"])
	assert.Equal(t, Absent, rec.shapes["last"])
	assert.Equal(t, []string{"unknown"}, rec.unmatched)
}

func TestRewriter_ExpandReturnsCopyWithoutRecording(t *testing.T) {
	rec := newRecorder()
	r := New(nicknameDict(), nil, WithRecorder(rec))

	got := r.Expand("victor")
	got[0] = "mutated"
	assert.Equal(t, []string{"victor", "vick", "vic"}, r.Expand("victor"))

	assert.Equal(t, []string{"nobody"}, r.Expand("nobody"))
	_, ok := r.Lookup("nobody")
	assert.False(t, ok)
	assert.Empty(t, rec.unmatched)
}

func TestRewriter_LookupUsesRewriterNormalizer(t *testing.T) {
	dict := synonyms.Build("speed", synonyms.Source{"quick": {"rapid"}}, synonyms.Options{Stem: true})

	syns, ok := New(dict, nil).Lookup("quickly")
	assert.True(t, ok)
	assert.Equal(t, []string{"quick", "rapid"}, syns)

	_, ok = New(dict, nil, WithStemmer(nil)).Lookup("quickly")
	assert.False(t, ok)
}

func TestAddSynonyms_ContinuesExactlyOnce(t *testing.T) {
	tests := []struct {
		name  string
		conds query.Conditions
	}{
		{"rewritten", query.Conditions{"$text": map[string]any{"$search": "vic"}}},
		{"nothing matched", query.Conditions{"other": 1}},
		{"nil conditions", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			hook := AddSynonyms(nicknameDict(), nil)

			err := hook(context.Background(), tt.conds, func() error {
				calls++
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestAddSynonyms_InHookChain(t *testing.T) {
	reg := hooks.NewRegistry()
	reg.Pre(hooks.OpFind, AddSynonyms(nicknameDict(), []string{"name"}))

	conds := query.Conditions{"name": "dave"}
	var seen []any
	err := reg.Run(context.Background(), hooks.OpFind, conds, func() error {
		clause, _ := query.AsMap(conds["name"])
		seen, _ = query.AsList(clause[query.OpIn])
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []any{"david", "dave", "davy", "vida"}, seen)
}

func TestRewriter_ConcurrentApply(t *testing.T) {
	r := New(nicknameDict(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conds := query.Conditions{"$text": map[string]any{"$search": "victor"}}
			r.Apply(conds)
			text, _ := query.AsMap(conds["$text"])
			assert.True(t, strings.HasPrefix(text["$search"].(string), "victor"))
		}()
	}
	wg.Wait()
}
