package extract

import "os"

// TextExtractor returns a plain-text file's contents verbatim.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DegradedTextUnreadable, nil
	}
	return string(b), nil
}
