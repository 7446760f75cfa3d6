package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := New(n)
		assert.ErrorIs(t, err, ErrInvalidChunkSize, "size %d", n)
	}
}

func TestSplit_GroupsOfTwo(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	chunks := c.Split("Cats are mammals. Dogs bark loudly. Birds can fly. Fish live in water.")
	require.Len(t, chunks, 2)
	assert.Equal(t, "Cats are mammals. Dogs bark loudly.", chunks[0])
	assert.Equal(t, "Birds can fly. Fish live in water.", chunks[1])
}

func TestSplit_RemainderChunkIsSmaller(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	chunks := c.Split("One. Two. Three.")
	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0])
	assert.Equal(t, "Three.", chunks[1])
}

func TestSplit_EmptyAndWhitespace(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)

	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplit_UnterminatedTailKept(t *testing.T) {
	c, err := New(1)
	require.NoError(t, err)

	chunks := c.Split("A complete sentence. a trailing fragment without punctuation")
	require.Len(t, chunks, 2)
	assert.Equal(t, "A complete sentence.", chunks[0])
	assert.Equal(t, "a trailing fragment without punctuation", chunks[1])
}

func TestSplit_MixedTerminators(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	chunks := c.Split("Is it raining? It is! Bring an umbrella.")
	require.Len(t, chunks, 2)
	assert.Equal(t, "Is it raining? It is!", chunks[0])
	assert.Equal(t, "Bring an umbrella.", chunks[1])
}

// Every sentence of the input must land in exactly one chunk, in order.
func TestSplit_CoversAllSentences(t *testing.T) {
	sentences := []string{
		"The kernel schedules threads.",
		"Each thread owns a stack.",
		"Stacks grow on demand.",
		"Page faults trigger growth.",
		"The allocator maps new pages.",
	}
	text := strings.Join(sentences, " ")

	for n := 1; n <= len(sentences)+1; n++ {
		c, err := New(n)
		require.NoError(t, err)

		chunks := c.Split(text)
		want := (len(sentences) + n - 1) / n
		assert.Len(t, chunks, want, "n=%d", n)
		assert.Equal(t, text, strings.Join(chunks, " "), "n=%d", n)
	}
}

func TestSplit_CollapsesInternalNewlines(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	chunks := c.Split("First line.\nSecond line. Third line.")
	require.Len(t, chunks, 2)
	assert.Equal(t, "First line. Second line.", chunks[0])
	assert.Equal(t, "Third line.", chunks[1])
}
