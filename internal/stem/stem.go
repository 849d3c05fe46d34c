// Package stem provides the word-stemming capability used when building and
// querying stemmed synonym dictionaries.
//
// Stemmers receive lowercase words and must be deterministic and free of side
// effects: the same stemmer is applied to dictionary keys at build time and to
// query tokens at rewrite time, and both sides must agree.
package stem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/go-porterstemmer"
	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
)

// Stemmer reduces a word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// Func adapts a plain function to the Stemmer interface.
type Func func(word string) string

// Stem implements Stemmer.
func (f Func) Stem(word string) string { return f(word) }

// Algorithm names accepted by New.
const (
	Snowball = "snowball"
	Porter   = "porter"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = Snowball

var algorithms = map[string]Stemmer{
	Snowball: Func(snowballStem),
	Porter:   Func(porterStem),
}

// New returns the stemmer registered under name.
// An empty name selects DefaultAlgorithm.
func New(name string) (Stemmer, error) {
	if name == "" {
		name = DefaultAlgorithm
	}
	s, ok := algorithms[strings.ToLower(name)]
	if !ok {
		return nil, derrors.New(derrors.ErrCodeUnknownStemmer,
			fmt.Sprintf("unknown stemming algorithm %q", name), nil).
			WithSuggestion("Use one of: " + strings.Join(Algorithms(), ", "))
	}
	return s, nil
}

// Algorithms lists the registered algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// snowballStem applies the Snowball (Porter2) English stemmer.
func snowballStem(word string) string {
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	return env.Current()
}

// porterStem applies the original Porter stemmer.
func porterStem(word string) string {
	return porterstemmer.StemString(word)
}
