// Package scan runs a captured label frame through preparation, recognition
// and parsing, one request at a time per client.
package scan

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/erazemk/motoinvent/internal/imaging"
	"github.com/erazemk/motoinvent/internal/label"
	"github.com/erazemk/motoinvent/internal/ocr"
)

// DefaultTimeout bounds a single recognition call.
const DefaultTimeout = 60 * time.Second

// ResultTTL is how long a recognized frame is remembered. Retried uploads of
// the same frame skip recognition.
const ResultTTL = 5 * time.Minute

// Scan outcomes reported to a Recorder.
const (
	OutcomeOK          = "ok"
	OutcomeNoText      = "no_text"
	OutcomeInvalid     = "invalid_frame"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
	OutcomeBusy        = "busy"
)

// Recorder observes scans.
type Recorder interface {
	ObserveScan(outcome string, d time.Duration)
	ScanCacheHit()
}

type nopRecorder struct{}

func (nopRecorder) ObserveScan(string, time.Duration) {}
func (nopRecorder) ScanCacheHit()                     {}

var (
	ErrInProgress             = errors.New("a scan is already in progress")
	ErrRecognitionUnavailable = errors.New("text recognition unavailable")
	ErrRecognitionFailed      = errors.New("text recognition failed")
	ErrNoText                 = errors.New("no text recognized")
	ErrInvalidFrame           = errors.New("invalid frame")
)

// Service scans label frames.
type Service struct {
	engine  ocr.Engine
	parser  *label.Parser
	timeout time.Duration
	results *cache.Cache
	rec     Recorder

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewService creates a scan service. A nil parser means label.Default and a
// zero timeout means DefaultTimeout.
func NewService(engine ocr.Engine, parser *label.Parser, timeout time.Duration) *Service {
	if parser == nil {
		parser = label.Default
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		engine:  engine,
		parser:  parser,
		timeout: timeout,
		results: cache.New(ResultTTL, 2*ResultTTL),
		rec:     nopRecorder{},
		busy:    make(map[string]struct{}),
	}
}

// SetRecorder installs a scan observer. It must be called before serving.
func (s *Service) SetRecorder(rec Recorder) {
	if rec == nil {
		rec = nopRecorder{}
	}
	s.rec = rec
}

// Scan prepares frame, recognizes its text and parses it. Only one scan per
// clientKey runs at a time; a second one gets ErrInProgress.
func (s *Service) Scan(ctx context.Context, clientKey string, frame []byte) (label.Result, error) {
	if !s.acquire(clientKey) {
		s.rec.ObserveScan(OutcomeBusy, 0)
		return label.Result{}, ErrInProgress
	}
	defer s.release(clientKey)

	sum := sha256.Sum256(frame)
	key := hex.EncodeToString(sum[:])
	if v, ok := s.results.Get(key); ok {
		s.rec.ScanCacheHit()
		return v.(label.Result), nil
	}

	start := time.Now()
	res, outcome, err := s.recognize(ctx, clientKey, frame)
	s.rec.ObserveScan(outcome, time.Since(start))
	if err != nil {
		return res, err
	}

	s.results.Set(key, res, cache.DefaultExpiration)
	slog.Info("label scanned", "client", clientKey, "duration", time.Since(start),
		"lines", len(res.Lines), "model", res.ModelID, "code", res.Code)
	return res, nil
}

func (s *Service) recognize(ctx context.Context, clientKey string, frame []byte) (label.Result, string, error) {
	png, err := imaging.Prepare(bytes.NewReader(frame))
	if err != nil {
		return label.Result{}, OutcomeInvalid, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.engine.Recognize(ctx, png)
	if err != nil {
		slog.Warn("recognition failed", "client", clientKey, "duration", time.Since(start), "error", err)
		if errors.Is(err, ocr.ErrUnavailable) {
			return label.Result{}, OutcomeUnavailable, fmt.Errorf("%w: %w", ErrRecognitionUnavailable, err)
		}
		return label.Result{}, OutcomeFailed, fmt.Errorf("%w: %w", ErrRecognitionFailed, err)
	}

	if strings.TrimSpace(text) == "" {
		return label.Result{RawText: text, Lines: []label.Line{}}, OutcomeNoText, ErrNoText
	}
	return s.parser.Parse(text), OutcomeOK, nil
}

// ParseText parses text recognized elsewhere, such as on the device.
func (s *Service) ParseText(text string) label.Result {
	return s.parser.Parse(text)
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.busy[key]; ok {
		return false
	}
	s.busy[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	delete(s.busy, key)
	s.mu.Unlock()
}
