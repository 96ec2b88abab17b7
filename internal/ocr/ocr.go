// Package ocr wraps the text recognition engines used for part labels.
package ocr

import (
	"context"
	"errors"
	"fmt"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "spa"

var (
	// ErrUnavailable means no engine is installed or configured.
	ErrUnavailable = errors.New("ocr engine unavailable")
	// ErrFailed means the engine ran but could not recognize the image.
	ErrFailed = errors.New("ocr failed")
)

// Engine recognizes text in a PNG image and returns it as multi-line text.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// Disabled is an Engine that always reports ErrUnavailable.
type Disabled struct{}

// Recognize implements Engine.
func (Disabled) Recognize(context.Context, []byte) (string, error) {
	return "", ErrUnavailable
}

// New returns the engine called name: "tesseract" for the linked library,
// "command" for the tesseract binary, or "none".
func New(name, lang string) (Engine, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	switch name {
	case "tesseract":
		return NewTesseract(lang), nil
	case "command", "":
		return &Command{Lang: lang}, nil
	case "none", "disabled":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", name)
	}
}
