package synonyms

import (
	"strings"

	"github.com/Aman-CERP/docsyn/internal/stem"
)

// Normalizer turns a word into a dictionary lookup key: lowercase, then stemmed
// when a Stemmer is set. Builders and rewriters must normalize the same way.
type Normalizer struct {
	Stemmer stem.Stemmer
}

// Key returns the lookup key for word.
func (n Normalizer) Key(word string) string {
	key := strings.ToLower(word)
	if n.Stemmer != nil {
		key = n.Stemmer.Stem(key)
	}
	return key
}
