package synonyms

import (
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/Aman-CERP/docsyn/internal/stem"
)

// Options control how a Source is closed into a Dictionary.
type Options struct {
	// Stem stores stemmed lookup keys.
	Stem bool
	// KeyOnly collapses every expansion to the entry's canonical word.
	KeyOnly bool
	// QuoteMatch wraps the canonical word in double quotes (KeyOnly only),
	// turning it into an exact phrase for full-text search.
	QuoteMatch bool
	// Stemmer is used when Stem is set. Nil selects stem.DefaultAlgorithm.
	Stemmer stem.Stemmer
}

// normalizer returns the key normalizer these options describe.
func (o Options) normalizer() Normalizer {
	if !o.Stem {
		return Normalizer{}
	}
	if o.Stemmer == nil {
		s, _ := stem.New(stem.DefaultAlgorithm)
		return Normalizer{Stemmer: s}
	}
	return Normalizer{Stemmer: o.Stemmer}
}

// Build closes src into a symmetric Dictionary.
//
// Entries are visited in sorted key order. For every entry the canonical word
// and its synonyms form one member set; each member's key accumulates the whole
// set, so any two co-occurring words find each other. Keys that collide (for
// instance after stemming) merge their expansions.
func Build(name string, src Source, opts Options) *Dictionary {
	norm := opts.normalizer()
	terms := make(map[string][]string, len(src)*3)
	// canonical records the entry word each key collapses to under KeyOnly.
	// An entry's own key outranks back-references from other entries.
	canonical := make(map[string]string, len(src)*3)
	owned := make(map[string]bool, len(src))

	for _, word := range src.Words() {
		key := norm.Key(word)
		if !owned[key] {
			canonical[key] = word
			owned[key] = true
		}
		members := make([]string, 0, len(src[word])+1)
		members = append(members, word)
		for _, syn := range src[word] {
			if syn != "" {
				members = append(members, syn)
			}
		}

		terms[key] = union(terms[key], members)

		for _, m := range members {
			mk := norm.Key(m)
			if _, ok := canonical[mk]; !ok {
				canonical[mk] = word
			}
			if _, ok := terms[mk]; !ok {
				terms[mk] = []string{word}
			}
			terms[mk] = union(terms[mk], terms[key])
		}
	}

	if opts.KeyOnly {
		for k := range terms {
			word := canonical[k]
			if opts.QuoteMatch {
				word = `"` + word + `"`
			}
			terms[k] = []string{word}
		}
	}

	trie := patricia.NewTrie()
	for k := range terms {
		trie.Insert(patricia.Prefix(k), struct{}{})
	}

	return &Dictionary{
		name:  name,
		opts:  opts,
		norm:  norm,
		terms: terms,
		trie:  trie,
	}
}

// union appends the words of add missing from base, keeping first-seen order.
// The result never aliases add.
func union(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, w := range list {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
