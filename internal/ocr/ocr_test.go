package ocr

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"tesseract", false},
		{"command", false},
		{"", false},
		{"none", false},
		{"cloud", true},
	}

	for _, tt := range tests {
		e, err := New(tt.name, "")
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q): err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if !tt.wantErr && e == nil {
			t.Errorf("New(%q): nil engine", tt.name)
		}
	}
}

func TestNewDefaultLanguage(t *testing.T) {
	e, err := New("command", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c := e.(*Command); c.Lang != DefaultLanguage {
		t.Errorf("expected lang %q, got %q", DefaultLanguage, c.Lang)
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Recognize(context.Background(), nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCommandMissingBinary(t *testing.T) {
	c := &Command{Path: "/nonexistent/tesseract-binary"}
	_, err := c.Recognize(context.Background(), []byte("png"))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCommandNonZeroExit(t *testing.T) {
	bin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}

	c := &Command{Path: bin}
	_, err = c.Recognize(context.Background(), []byte("png"))
	if !errors.Is(err, ErrFailed) {
		t.Errorf("expected ErrFailed, got %v", err)
	}
}

func TestCommandCanceled(t *testing.T) {
	bin, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Command{Path: bin}
	_, err = c.Recognize(ctx, nil)
	if !errors.Is(err, ErrFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected ErrFailed wrapping context.Canceled, got %v", err)
	}
}
