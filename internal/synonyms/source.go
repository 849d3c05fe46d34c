package synonyms

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
)

// Source maps a canonical word to its synonyms. It is read-only input.
type Source map[string][]string

// Words returns the entry keys in sorted order.
func (s Source) Words() []string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// SourceFromMap converts a decoded document into a Source.
// Each value may be a single string, a []string or a []any of strings.
func SourceFromMap(raw map[string]any) (Source, error) {
	src := make(Source, len(raw))
	for word, v := range raw {
		switch syn := v.(type) {
		case nil:
			src[word] = nil
		case string:
			src[word] = []string{syn}
		case []string:
			src[word] = append([]string(nil), syn...)
		case []any:
			list := make([]string, 0, len(syn))
			for i, item := range syn {
				s, ok := item.(string)
				if !ok {
					return nil, derrors.New(derrors.ErrCodeSourceInvalid,
						fmt.Sprintf("synonym %d of %q is %T, want string", i, word, item), nil).
						WithDetail("word", word)
				}
				list = append(list, s)
			}
			src[word] = list
		default:
			return nil, derrors.New(derrors.ErrCodeSourceInvalid,
				fmt.Sprintf("synonyms of %q are %T, want a string or a list of strings", word, v), nil).
				WithDetail("word", word)
		}
	}
	return src, nil
}

// SourceID derives a stable identity for an anonymous inline source.
// Sources with equal content share an identity.
func SourceID(src Source) string {
	// encoding/json writes map keys in sorted order.
	data, _ := json.Marshal(src)
	sum := sha256.Sum256(data)
	return "inline-" + hex.EncodeToString(sum[:8])
}
