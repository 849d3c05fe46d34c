package stem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
)

func TestSnowball_InflectedFormsShareStem(t *testing.T) {
	s, err := New(Snowball)
	require.NoError(t, err)

	tests := []struct {
		a, b string
	}{
		{"quick", "quickly"},
		{"rapid", "rapidly"},
		{"hops", "hopping"},
		{"skips", "skipped"},
		{"idle", "idling"},
		{"jumps", "jump"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, s.Stem(tt.a), s.Stem(tt.b))
		})
	}
}

func TestSnowball_KnownStems(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)

	assert.Equal(t, "quick", s.Stem("quickly"))
	assert.Equal(t, "hop", s.Stem("hopping"))
	assert.Equal(t, "over", s.Stem("over"))
	assert.Equal(t, "dog", s.Stem("dog"))
}

func TestPorter_Stems(t *testing.T) {
	s, err := New("PORTER")
	require.NoError(t, err)

	assert.Equal(t, "run", s.Stem("running"))
	assert.Equal(t, s.Stem("connected"), s.Stem("connecting"))
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := New("lancaster")
	require.Error(t, err)

	var de *derrors.DocsynError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, derrors.ErrCodeUnknownStemmer, de.Code)
	assert.Contains(t, de.Suggestion, "porter")
}

func TestAlgorithms_Sorted(t *testing.T) {
	assert.Equal(t, []string{Porter, Snowball}, Algorithms())
}

func TestCached_ComputesOnce(t *testing.T) {
	calls := 0
	inner := Func(func(w string) string {
		calls++
		return w[:1]
	})
	c := NewCached(inner, 2)

	assert.Equal(t, "q", c.Stem("quick"))
	assert.Equal(t, "q", c.Stem("quick"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	c.Stem("a")
	c.Stem("b")
	assert.Equal(t, 2, c.Len(), "cache is bounded")
}
