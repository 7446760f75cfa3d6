package extract

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine renders a PDF page to a raster image with MuPDF and runs
// Tesseract OCR on it.
type TesseractEngine struct{}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) RecognizePage(path string, pageIndex int) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf for ocr failed: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(pageIndex)
	if err != nil {
		return "", fmt.Errorf("render pdf page %d failed: %w", pageIndex, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page image failed: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("load page image for ocr failed: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr pdf page %d failed: %w", pageIndex, err)
	}
	return text, nil
}
