package extract

import (
	"errors"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// OCREngine recognizes the text on one PDF page. pageIndex is zero-based.
type OCREngine interface {
	RecognizePage(path string, pageIndex int) (string, error)
}

// PDFExtractor extracts text per page, in page order, with no separator
// between pages. Pages with an empty text layer (scanned pages) fall back to
// OCR; an OCR failure degrades that page to an empty string so one bad page
// does not erase text recovered from the rest of the document.
type PDFExtractor struct {
	ocr OCREngine
	log *logrus.Logger
}

func NewPDFExtractor(ocr OCREngine, log *logrus.Logger) *PDFExtractor {
	return &PDFExtractor{ocr: ocr, log: log}
}

func (e *PDFExtractor) Extract(path string) (text string, err error) {
	// The pdf library panics on some malformed files; a corrupt document
	// degrades the whole extraction, it never crashes ingestion.
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("path", path).Warnf("pdf extraction panicked: %v", r)
			text, err = DegradedPDFUnreadable, nil
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return DegradedPDFUnreadable, nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return DegradedPDFUnreadable, nil
	}

	// Protected-but-not-secret PDFs typically open with an empty password.
	// If that fails, short-circuit the whole document: no per-page attempts
	// against an undecryptable file.
	reader, err := pdf.NewReaderEncrypted(f, info.Size(), func() string { return "" })
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return DegradedDecryptFailed, nil
		}
		return DegradedPDFUnreadable, nil
	}

	var sb strings.Builder
	ocrFailed := false
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		pageText, ok := e.extractPage(path, reader, pageNum)
		if !ok {
			ocrFailed = true
		}
		sb.WriteString(pageText)
	}

	if strings.TrimSpace(sb.String()) == "" && ocrFailed {
		return DegradedOCRFailed, nil
	}
	return sb.String(), nil
}

// extractPage tries the text layer first, then OCR. The second return value
// is false only when OCR was attempted and failed.
func (e *PDFExtractor) extractPage(path string, reader *pdf.Reader, pageNum int) (string, bool) {
	page := reader.Page(pageNum)
	if !page.V.IsNull() {
		if text, err := page.GetPlainText(nil); err == nil && strings.TrimSpace(text) != "" {
			return text, true
		}
	}

	if e.ocr == nil {
		return "", true
	}
	text, err := e.ocr.RecognizePage(path, pageNum-1)
	if err != nil {
		e.log.WithFields(logrus.Fields{"path": path, "page": pageNum}).Warnf("page ocr failed: %v", err)
		return "", false
	}
	return text, true
}
