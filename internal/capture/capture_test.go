package capture_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/flatcheck/internal/capture"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func frame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.White)
	return img
}

type mockStream struct {
	frameFn func(context.Context) (image.Image, error)
	closed  int
}

func (m *mockStream) Frame(ctx context.Context) (image.Image, error) {
	if m.frameFn != nil {
		return m.frameFn(ctx)
	}
	return frame(), nil
}

func (m *mockStream) Close() error {
	m.closed++
	return nil
}

type mockSource struct {
	openFn  func(context.Context, capture.Facing) (capture.Stream, error)
	streams []*mockStream
	facings []capture.Facing
}

func (m *mockSource) Open(ctx context.Context, facing capture.Facing) (capture.Stream, error) {
	m.facings = append(m.facings, facing)
	if m.openFn != nil {
		return m.openFn(ctx, facing)
	}
	s := &mockStream{}
	m.streams = append(m.streams, s)
	return s, nil
}

func TestOpenPrefersEnvironment(t *testing.T) {
	src := &mockSource{}
	s := capture.NewSession(src, discardLogger())

	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(src.facings) != 1 || src.facings[0] != capture.Environment {
		t.Errorf("facings = %v", src.facings)
	}
	if !s.Active() {
		t.Error("session should be active")
	}
}

func TestOpenFallsBack(t *testing.T) {
	stream := &mockStream{}
	src := &mockSource{}
	src.openFn = func(_ context.Context, f capture.Facing) (capture.Stream, error) {
		if f == capture.Environment {
			return nil, errors.New("no rear camera")
		}
		return stream, nil
	}

	s := capture.NewSession(src, discardLogger())
	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(src.facings) != 2 || src.facings[1] != capture.Any {
		t.Errorf("facings = %v", src.facings)
	}
}

func TestOpenUnavailable(t *testing.T) {
	src := &mockSource{openFn: func(context.Context, capture.Facing) (capture.Stream, error) {
		return nil, errors.New("blocked")
	}}

	s := capture.NewSession(src, discardLogger())
	err := s.Open(context.Background())
	if !errors.Is(err, capture.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if s.Active() {
		t.Error("session should not be active")
	}
}

func TestOpenReleasesPreviousStream(t *testing.T) {
	src := &mockSource{}
	s := capture.NewSession(src, discardLogger())

	s.Open(context.Background())
	s.Open(context.Background())

	if len(src.streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(src.streams))
	}
	if src.streams[0].closed != 1 {
		t.Error("first stream was not closed")
	}
	if src.streams[1].closed != 0 {
		t.Error("second stream should stay open")
	}
}

func TestCaptureClosesStream(t *testing.T) {
	src := &mockSource{}
	s := capture.NewSession(src, discardLogger())
	s.Open(context.Background())

	url, err := s.Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("url = %.40s", url)
	}
	if s.Active() || src.streams[0].closed != 1 {
		t.Error("stream not released after capture")
	}
}

func TestCaptureFailureReleasesStream(t *testing.T) {
	stream := &mockStream{frameFn: func(context.Context) (image.Image, error) {
		return nil, errors.New("sensor error")
	}}
	src := &mockSource{openFn: func(context.Context, capture.Facing) (capture.Stream, error) {
		return stream, nil
	}}

	s := capture.NewSession(src, discardLogger())
	s.Open(context.Background())

	if _, err := s.Capture(context.Background()); !errors.Is(err, capture.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
	if stream.closed != 1 {
		t.Error("stream not released after failure")
	}
}

func TestCaptureWithoutStream(t *testing.T) {
	s := capture.NewSession(&mockSource{}, discardLogger())
	if _, err := s.Capture(context.Background()); !errors.Is(err, capture.ErrNoStream) {
		t.Errorf("err = %v, want ErrNoStream", err)
	}
}

func TestSnapshotSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, frame())
	}))
	defer srv.Close()

	cfg := &capture.Config{DefaultURL: srv.URL}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	s := capture.NewSession(capture.NewSnapshot(cfg), discardLogger())
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	url, err := s.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("url = %.40s", url)
	}
}

func TestSnapshotNotConfigured(t *testing.T) {
	cfg := &capture.Config{}
	cfg.Finalize(nil)

	s := capture.NewSession(capture.NewSnapshot(cfg), discardLogger())
	if err := s.Open(context.Background()); !errors.Is(err, capture.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CAMERA_TIMEOUT", "3s")

	cfg := &capture.Config{}
	if err := cfg.Finalize(&capture.Env{Timeout: "TEST_CAMERA_TIMEOUT"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout != "3s" {
		t.Errorf("timeout = %q", cfg.Timeout)
	}

	bad := &capture.Config{Timeout: "soon"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected invalid timeout error")
	}
}
