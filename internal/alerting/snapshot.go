package alerting

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/google/uuid"
	"github.com/tranvd/attendance-kiosk/internal/geometry"
	"github.com/tranvd/attendance-kiosk/internal/pipeline"
)

// cropMarginFraction widens the violation crop so the saved evidence shows
// context around the face, not just the box.
const cropMarginFraction = 0.4

// maxSnapshotSide caps the longest side of an uploaded crop.
const maxSnapshotSide = 480

// Uploader pushes a violation image to remote storage and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, path string, status pipeline.Status) (string, error)
}

// Snapshotter crops violation evidence out of frames and persists it under
// the violations directory, one subfolder per status.
type Snapshotter struct {
	dir string
}

func NewSnapshotter(dir string) *Snapshotter {
	return &Snapshotter{dir: dir}
}

// Save crops the face region (with margin) out of the frame, downscales it if
// needed, and writes it as a JPEG. Returns the saved file path.
func (s *Snapshotter) Save(frame pipeline.Frame, box geometry.Rect, req *SnapshotRequest) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(frame.Data))
	if err != nil {
		return "", fmt.Errorf("decoding frame: %w", err)
	}

	bounds := img.Bounds()
	crop := box.ExpandByFraction(cropMarginFraction, bounds.Dx(), bounds.Dy())
	if crop.Empty() {
		return "", fmt.Errorf("empty crop region for box %+v", box)
	}

	cropped := cropAndScale(img, crop)

	statusDir := filepath.Join(s.dir, string(req.Status))
	if err := os.MkdirAll(statusDir, 0o755); err != nil {
		return "", fmt.Errorf("creating violations dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.jpg",
		req.Status, req.At.Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(statusDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	return path, nil
}

// cropAndScale extracts the crop rectangle and scales it down so the longest
// side does not exceed maxSnapshotSide. Small crops are copied unscaled.
func cropAndScale(img image.Image, crop geometry.Rect) image.Image {
	srcRect := image.Rect(crop.X1, crop.Y1, crop.X2, crop.Y2)

	w, h := crop.Width(), crop.Height()
	if w > maxSnapshotSide || h > maxSnapshotSide {
		if w >= h {
			h = h * maxSnapshotSide / w
			w = maxSnapshotSide
		} else {
			w = w * maxSnapshotSide / h
			h = maxSnapshotSide
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, srcRect, draw.Src, nil)
	return dst
}
