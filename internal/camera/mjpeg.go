// Package camera provides frame sources for the kiosk. The reference
// deployment streams MJPEG over HTTP from the camera unit next to the door.
package camera

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tranvd/attendance-kiosk/internal/pipeline"
)

// maxFrameSize caps a single MJPEG part read.
const maxFrameSize = 8 << 20

// MJPEGSource reads frames from a multipart/x-mixed-replace MJPEG stream.
// It reconnects automatically when the stream drops.
type MJPEGSource struct {
	url    string
	width  int
	height int
	client *http.Client

	mu     sync.Mutex
	reader *multipart.Reader
	body   io.Closer
}

// NewMJPEGSource creates a frame source for the given stream URL. Width and
// height describe the camera's frame geometry.
func NewMJPEGSource(url string, width, height int) *MJPEGSource {
	return &MJPEGSource{
		url:    url,
		width:  width,
		height: height,
		client: &http.Client{}, // no timeout, the stream is long-lived
	}
}

// Next blocks until the next frame arrives. On stream errors it reconnects
// once before giving up, so a transient camera hiccup costs one call.
func (s *MJPEGSource) Next(ctx context.Context) (pipeline.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reader == nil {
		if err := s.connect(ctx); err != nil {
			return pipeline.Frame{}, err
		}
	}

	data, err := s.readPart()
	if err != nil {
		s.closeStream()
		if ctx.Err() != nil {
			return pipeline.Frame{}, ctx.Err()
		}
		if err := s.connect(ctx); err != nil {
			return pipeline.Frame{}, err
		}
		data, err = s.readPart()
		if err != nil {
			s.closeStream()
			return pipeline.Frame{}, fmt.Errorf("reading frame after reconnect: %w", err)
		}
	}

	return pipeline.Frame{Data: data, Width: s.width, Height: s.height}, nil
}

// Close terminates the stream connection.
func (s *MJPEGSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeStream()
	return nil
}

func (s *MJPEGSource) connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to camera stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("camera stream returned status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		return fmt.Errorf("parsing stream content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		return fmt.Errorf("unexpected stream content type %q", mediaType)
	}

	s.reader = multipart.NewReader(resp.Body, params["boundary"])
	s.body = resp.Body
	return nil
}

func (s *MJPEGSource) readPart() ([]byte, error) {
	part, err := s.reader.NextPart()
	if err != nil {
		return nil, err
	}
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, maxFrameSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame part")
	}
	return data, nil
}

func (s *MJPEGSource) closeStream() {
	if s.body != nil {
		s.body.Close()
	}
	s.reader = nil
	s.body = nil
}

// Source produces camera frames; satisfied by MJPEGSource.
type Source interface {
	Next(ctx context.Context) (pipeline.Frame, error)
}

// TickerSource wraps another source and throttles it to a fixed frame rate.
// The kiosk does not need every camera frame; processing a few per second
// keeps the inference server load bounded.
type TickerSource struct {
	inner    Source
	interval time.Duration
	last     time.Time
}

// NewTickerSource wraps a source with a minimum interval between frames.
func NewTickerSource(inner Source, interval time.Duration) *TickerSource {
	return &TickerSource{inner: inner, interval: interval}
}

// Next delays until the interval has elapsed since the previous frame, then
// reads from the wrapped source.
func (s *TickerSource) Next(ctx context.Context) (pipeline.Frame, error) {
	if wait := s.interval - time.Since(s.last); wait > 0 {
		select {
		case <-ctx.Done():
			return pipeline.Frame{}, ctx.Err()
		case <-time.After(wait):
		}
	}
	s.last = time.Now()
	return s.inner.Next(ctx)
}
