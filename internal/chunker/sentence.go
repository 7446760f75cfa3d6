// Package chunker splits extracted text into sentence-aligned retrieval
// chunks: fixed-size consecutive groups of whole sentences, no overlap.
package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidChunkSize = errors.New("sentences per chunk must be positive")

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

type Chunker struct {
	sentencesPerChunk int
}

func New(sentencesPerChunk int) (*Chunker, error) {
	if sentencesPerChunk <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, sentencesPerChunk)
	}
	return &Chunker{sentencesPerChunk: sentencesPerChunk}, nil
}

// Split partitions text into chunks of exactly sentencesPerChunk sentences,
// except the final chunk which holds the remainder. Sentences within a chunk
// are joined by a single space; both sentence order and chunk order follow
// document order. Empty text yields no chunks.
func (c *Chunker) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(sentences)+c.sentencesPerChunk-1)/c.sentencesPerChunk)
	for i := 0; i < len(sentences); i += c.sentencesPerChunk {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[i:end], " "))
	}
	return chunks
}

// splitSentences segments text on sentence terminators, keeping each
// terminator with its sentence. A trailing fragment without a terminator is
// kept as a final sentence so no input text is ever dropped. The pattern has
// no abbreviation or number awareness: a period inside "3.14" or "e.g." also
// ends a sentence, so rejoined output is sentence-exact, not byte-exact, for
// such text.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
