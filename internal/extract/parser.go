package extract

import (
	"fmt"
	"os"
	"strings"
)

// Parser resolves a file's type from its path, picks the matching extractor
// from the registry, and returns the extracted text. It fails only for the
// two structural conditions (unsupported type, missing file); content
// problems are already degraded to placeholder strings by the extractors.
type Parser struct {
	registry *Registry
}

func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

func (p *Parser) Parse(path string) (string, error) {
	extractor, err := p.registry.Resolve(TypeID(path))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("stat file failed: %w", err)
	}
	return extractor.Extract(path)
}

// TypeID derives the file-type identifier from the final dot segment of the
// path ("a.b.pdf" -> "pdf"). Case-sensitive; a path without a dot has no type.
func TypeID(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return ""
}
