package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticExtractor struct {
	text string
}

func (e *staticExtractor) Extract(string) (string, error) { return e.text, nil }

func TestRegistry_ResolveRegistered(t *testing.T) {
	r := NewRegistry()
	r.Register("txt", func() Extractor { return &staticExtractor{text: "hello"} })

	ex, err := r.Resolve("txt")
	require.NoError(t, err)

	text, err := ex.Extract("ignored")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestRegistry_ResolveUnsupported(t *testing.T) {
	r := NewRegistry()
	r.Register("txt", func() Extractor { return &staticExtractor{} })

	_, err := r.Resolve("docx")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register("pdf", func() Extractor { return &staticExtractor{text: "first"} })
	r.Register("pdf", func() Extractor { return &staticExtractor{text: "second"} })

	ex, err := r.Resolve("pdf")
	require.NoError(t, err)

	text, _ := ex.Extract("ignored")
	assert.Equal(t, "second", text)
}

func TestRegistry_TypesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("txt", func() Extractor { return &staticExtractor{} })
	r.Register("pdf", func() Extractor { return &staticExtractor{} })

	assert.Equal(t, []string{"pdf", "txt"}, r.Types())
}

func TestIsDegraded(t *testing.T) {
	assert.True(t, IsDegraded(DegradedDecryptFailed))
	assert.True(t, IsDegraded(DegradedPDFUnreadable))
	assert.True(t, IsDegraded(DegradedOCRFailed))
	assert.True(t, IsDegraded(DegradedTextUnreadable))
	assert.False(t, IsDegraded("unable to read something else"))
	assert.False(t, IsDegraded(""))
}
