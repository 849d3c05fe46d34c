package synonyms

import (
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Dictionary is a built, closed synonym lookup. It is immutable once returned
// by Build and safe for concurrent readers.
type Dictionary struct {
	name  string
	opts  Options
	norm  Normalizer
	terms map[string][]string
	trie  *patricia.Trie
}

// Name returns the identity the dictionary was built under.
func (d *Dictionary) Name() string { return d.name }

// Options returns the options the dictionary was built with.
func (d *Dictionary) Options() Options { return d.opts }

// Normalizer returns the key normalizer used at build time.
func (d *Dictionary) Normalizer() Normalizer { return d.norm }

// Len returns the number of lookup keys.
func (d *Dictionary) Len() int { return len(d.terms) }

// Lookup returns the expansion stored under an already normalized key.
// The returned slice must not be modified.
func (d *Dictionary) Lookup(key string) ([]string, bool) {
	syns, ok := d.terms[key]
	return syns, ok
}

// Expand normalizes word with the build-time normalizer and returns its
// expansion, or a singleton holding word itself when it is unknown.
func (d *Dictionary) Expand(word string) []string {
	if syns, ok := d.terms[d.norm.Key(word)]; ok {
		return append([]string(nil), syns...)
	}
	return []string{word}
}

// Keys returns every lookup key in sorted order.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, len(d.terms))
	for k := range d.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithPrefix returns the lookup keys starting with prefix, sorted.
func (d *Dictionary) WithPrefix(prefix string) []string {
	if prefix == "" {
		return d.Keys()
	}
	var keys []string
	_ = d.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	})
	sort.Strings(keys)
	return keys
}
