package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "MODIFY", OpModify.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "RENAME", OpRename.String())
	assert.Equal(t, "UNKNOWN", Operation(42).String())
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{DebounceWindow: time.Second}.WithDefaults()

	assert.Equal(t, time.Second, opts.DebounceWindow)
	assert.Equal(t, 5*time.Second, opts.PollInterval)
	assert.Equal(t, 100, opts.EventBufferSize)
	assert.Contains(t, opts.Extensions, ".toml")
}

func TestOptions_SourceName(t *testing.T) {
	opts := DefaultOptions()
	tests := map[string]string{
		"/d/nicknames.json":     "nicknames",
		"/d/universities.YAML":  "universities",
		"/d/brands.yml":         "brands",
		"/d/places.toml":        "places",
		"/d/packed.msgpack":     "packed",
		"/d/notes.txt":          "",
		"/d/.nicknames.json":    "",
		"/d/nicknames.json.swp": "",
		"/d/noext":              "",
	}

	for path, want := range tests {
		assert.Equal(t, want, opts.SourceName(path), path)
	}
}
