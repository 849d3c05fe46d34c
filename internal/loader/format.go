package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/synonyms"
)

// Format is a dictionary file encoding.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	TOML    Format = "toml"
	Msgpack Format = "msgpack"
)

// Extensions lists the file extensions a loader tries, in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml", ".msgpack"}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".msgpack", ".mpk":
		return Msgpack, nil
	default:
		return "", derrors.New(derrors.ErrCodeUnknownFormat,
			fmt.Sprintf("cannot infer dictionary format of %q", path), nil).
			WithSuggestion("Use a .json, .yaml, .toml or .msgpack file")
	}
}

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case JSON, YAML, TOML, Msgpack:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", derrors.New(derrors.ErrCodeUnknownFormat,
			fmt.Sprintf("unknown dictionary format %q", name), nil).
			WithSuggestion("Valid formats: json, yaml, toml, msgpack")
	}
}

// Decode parses a dictionary document.
// The document must be a mapping of word to a synonym or a list of synonyms.
func Decode(format Format, data []byte) (synonyms.Source, error) {
	raw := make(map[string]any)

	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &raw)
	case YAML:
		err = yaml.Unmarshal(data, &raw)
	case TOML:
		_, err = toml.Decode(string(data), &raw)
	case Msgpack:
		err = msgpack.Unmarshal(data, &raw)
	default:
		return nil, derrors.New(derrors.ErrCodeUnknownFormat,
			fmt.Sprintf("unknown dictionary format %q", format), nil)
	}
	if err != nil {
		return nil, derrors.New(derrors.ErrCodeSourceInvalid,
			fmt.Sprintf("decode %s dictionary: %v", format, err), err)
	}

	return synonyms.SourceFromMap(raw)
}

// Encode serializes src in the given format.
func Encode(format Format, src synonyms.Source) ([]byte, error) {
	plain := map[string][]string(src)

	switch format {
	case JSON:
		data, err := json.MarshalIndent(plain, "", "  ")
		if err != nil {
			return nil, derrors.InternalError("encode json dictionary", err)
		}
		return append(data, '\n'), nil
	case YAML:
		data, err := yaml.Marshal(plain)
		if err != nil {
			return nil, derrors.InternalError("encode yaml dictionary", err)
		}
		return data, nil
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(plain); err != nil {
			return nil, derrors.InternalError("encode toml dictionary", err)
		}
		return buf.Bytes(), nil
	case Msgpack:
		enc := msgpack.GetEncoder()
		defer msgpack.PutEncoder(enc)

		var buf bytes.Buffer
		enc.Reset(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(plain); err != nil {
			return nil, derrors.InternalError("encode msgpack dictionary", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, derrors.New(derrors.ErrCodeUnknownFormat,
			fmt.Sprintf("unknown dictionary format %q", format), nil)
	}
}
