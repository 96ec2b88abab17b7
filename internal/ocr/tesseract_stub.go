//go:build !tesseract

package ocr

// NewTesseract reports ErrUnavailable on every call; build with -tags
// tesseract to link the library.
func NewTesseract(string) Engine {
	return Disabled{}
}
