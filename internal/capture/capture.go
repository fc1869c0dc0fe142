// Package capture owns the camera used to take photos for photo rows. A
// Session holds at most one open stream and releases it on every exit path.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/JaimeStill/flatcheck/internal/imaging"
)

// Facing selects which camera a stream should come from.
type Facing string

const (
	// Environment is the rear camera pointing away from the user.
	Environment Facing = "environment"
	// Any lets the device pick a camera.
	Any Facing = "any"
)

var (
	ErrUnavailable = errors.New("camera not available")
	ErrNoStream    = errors.New("no camera stream open")
)

// Source opens camera streams.
type Source interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Stream is one open camera. Frame returns a single still image.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Session owns at most one stream of a Source.
type Session struct {
	source Source
	logger *slog.Logger

	mu     sync.Mutex
	stream Stream
}

// NewSession returns a session with no stream open.
func NewSession(source Source, logger *slog.Logger) *Session {
	return &Session{source: source, logger: logger}
}

// Open releases any current stream and opens a new one, preferring the
// environment-facing camera and falling back to any camera.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.release()

	if s.source == nil {
		return ErrUnavailable
	}

	stream, err := s.source.Open(ctx, Environment)
	if err != nil {
		s.logger.Debug("environment camera unavailable, falling back", "error", err)
		stream, err = s.source.Open(ctx, Any)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.stream = stream
	return nil
}

// Active reports whether a stream is open.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Capture grabs one frame as a JPEG data URL and closes the stream,
// whether or not the capture succeeded.
func (s *Session) Capture(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return "", ErrNoStream
	}
	defer s.release()

	frame, err := s.stream.Frame(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return imaging.JPEGDataURL(frame)
}

// Close releases the stream, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
}

func (s *Session) release() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Close(); err != nil {
		s.logger.Warn("close camera stream", "error", err)
	}
	s.stream = nil
}
