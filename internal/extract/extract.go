// Package extract turns uploaded files into plain text. Extractors are
// registered per file-type identifier; content-level problems degrade to
// placeholder strings instead of errors so that one bad file or page never
// aborts ingestion of recoverable text.
package extract

import "errors"

var (
	// ErrUnsupportedType means no extractor is registered for the file's type.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrFileNotFound means the file path does not exist at extraction time.
	ErrFileNotFound = errors.New("file not found")
)

// Degraded placeholders substituted when no real text could be recovered.
// They are stored and ingested like normal content, so they must stay
// distinguishable from it.
const (
	DegradedDecryptFailed  = "unable to decrypt PDF document"
	DegradedPDFUnreadable  = "unable to read PDF document"
	DegradedOCRFailed      = "unable to recognize text in PDF document"
	DegradedTextUnreadable = "unable to read text file"
)

// Extractor extracts the full text of one file. Content-level failures are
// degraded to placeholder strings with a nil error; a non-nil error is
// reserved for structural problems a caller can act on.
type Extractor interface {
	Extract(path string) (string, error)
}

// IsDegraded reports whether text is one of the extraction placeholders.
func IsDegraded(text string) bool {
	switch text {
	case DegradedDecryptFailed, DegradedPDFUnreadable, DegradedOCRFailed, DegradedTextUnreadable:
		return true
	}
	return false
}
