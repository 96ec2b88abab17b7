//go:build tesseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text through the linked Tesseract library.
type Tesseract struct {
	Lang string
}

// NewTesseract returns a Tesseract engine for lang.
func NewTesseract(lang string) Engine {
	return &Tesseract{Lang: lang}
}

type result struct {
	text string
	err  error
}

// Recognize implements Engine. A client is created per call since gosseract
// clients are not safe for concurrent use.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	done := make(chan result, 1)
	go func() {
		text, err := t.recognize(png)
		done <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrFailed, ctx.Err())
	case r := <-done:
		return r.text, r.err
	}
}

func (t *Tesseract) recognize(png []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Lang); err != nil {
		return "", fmt.Errorf("%w: setting language: %v", ErrUnavailable, err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("%w: setting image: %v", ErrFailed, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailed, err)
	}
	return text, nil
}
