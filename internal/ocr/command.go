package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command recognizes text by piping the image through the tesseract binary.
type Command struct {
	// Path is the binary to run. Empty means "tesseract" from PATH.
	Path string
	Lang string
}

// Recognize implements Engine.
func (c *Command) Recognize(ctx context.Context, png []byte) (string, error) {
	path := c.Path
	if path == "" {
		path = "tesseract"
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	lang := c.Lang
	if lang == "" {
		lang = DefaultLanguage
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "stdin", "stdout", "-l", lang)
	cmd.Stdin = bytes.NewReader(png)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", ErrFailed, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", ErrFailed, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %v", ErrFailed, err)
	}
	return stdout.String(), nil
}
