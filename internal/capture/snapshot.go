package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
)

// Snapshot is a Source backed by HTTP still-image endpoints, as exposed by
// most network cameras. Each Frame issues one GET.
type Snapshot struct {
	client *http.Client
	urls   map[Facing]string
}

// NewSnapshot builds a snapshot source from cfg.
func NewSnapshot(cfg *Config) *Snapshot {
	return &Snapshot{
		client: &http.Client{Timeout: cfg.TimeoutDuration()},
		urls: map[Facing]string{
			Environment: cfg.EnvironmentURL,
			Any:         cfg.DefaultURL,
		},
	}
}

func (s *Snapshot) Open(ctx context.Context, facing Facing) (Stream, error) {
	url := s.urls[facing]
	if url == "" {
		return nil, fmt.Errorf("no %s camera configured", facing)
	}
	return &snapshotStream{client: s.client, url: url}, nil
}

type snapshotStream struct {
	client *http.Client
	url    string
	closed bool
}

func (st *snapshotStream) Frame(ctx context.Context) (image.Image, error) {
	if st.closed {
		return nil, ErrNoStream
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}

	resp, err := st.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch snapshot: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return img, nil
}

func (st *snapshotStream) Close() error {
	st.closed = true
	return nil
}
