// Package pipeline implements the per-frame decision pipeline: target-region
// containment, liveness debouncing, and identity matching. The pipeline has
// no side effects of its own; callers react to the returned decision.
package pipeline

import (
	"context"

	"github.com/tranvd/attendance-kiosk/internal/geometry"
	"github.com/tranvd/attendance-kiosk/internal/liveness"
	"github.com/tranvd/attendance-kiosk/internal/recognition"
)

// Status is the externally visible outcome of one frame.
type Status string

const (
	// StatusWaiting covers everything that needs no reaction: no face,
	// face outside the target region, or liveness still pending.
	StatusWaiting Status = "waiting"
	// StatusSpoof means a presentation attack has been confirmed.
	StatusSpoof Status = "spoof"
	// StatusUnknown means a live face was confirmed but matched nobody.
	StatusUnknown Status = "unknown"
	// StatusImage means a live face was confirmed and matched a known
	// identity; the UI reacts by showing the employee's photo.
	StatusImage Status = "image"
)

// Frame is one captured camera frame.
type Frame struct {
	Data   []byte // encoded image (JPEG)
	Width  int
	Height int
}

// Detection is one detected face within a frame.
type Detection struct {
	Box       geometry.Rect
	Embedding recognition.Embedding
}

// Detector finds faces in a frame and produces their embeddings.
type Detector interface {
	Detect(ctx context.Context, frame Frame) ([]Detection, error)
}

// SpoofClassifier decides whether a detected face is a live person or a
// presentation attack.
type SpoofClassifier interface {
	Classify(ctx context.Context, frame Frame, box geometry.Rect) (isReal bool, confidence float64, err error)
}

// Decision is the result of processing one frame.
type Decision struct {
	Status Status
	Box    *geometry.Rect // detected face box, for drawing; nil if no face
	UserID string         // set only for StatusImage
	Score  float64        // best match score, set when matching ran
}

// Pipeline drives the per-frame decision. It owns the liveness state and must
// only be used from a single goroutine.
type Pipeline struct {
	classifier SpoofClassifier
	matcher    *recognition.Matcher
	debouncer  *liveness.Debouncer
	target     geometry.Rect
}

func New(classifier SpoofClassifier, matcher *recognition.Matcher, debouncer *liveness.Debouncer, target geometry.Rect) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		matcher:    matcher,
		debouncer:  debouncer,
		target:     target,
	}
}

// TargetRegion returns the rectangle the face must be placed inside.
func (p *Pipeline) TargetRegion() geometry.Rect {
	return p.target
}

// ProcessFrame runs the decision pipeline for one frame. Only the first
// detection is considered: the kiosk serves one person at a time, additional
// faces in the frame are ignored.
func (p *Pipeline) ProcessFrame(ctx context.Context, frame Frame, detections []Detection) Decision {
	if len(detections) == 0 {
		p.debouncer.Reset()
		return Decision{Status: StatusWaiting}
	}

	det := detections[0]

	if !p.target.Contains(det.Box) {
		// The counters intentionally keep their value here: transient
		// edge clipping should not discard accumulated evidence. Only
		// the no-face branch resets them.
		return Decision{Status: StatusWaiting, Box: &det.Box}
	}

	isReal, _, err := p.classifier.Classify(ctx, frame, det.Box)
	if err != nil {
		// A classifier failure is non-fatal and counts as no observation
		// for this frame.
		p.debouncer.Reset()
		return Decision{Status: StatusWaiting, Box: &det.Box}
	}

	switch p.debouncer.Observe(isReal) {
	case liveness.ConfirmedReal:
		ident, score := p.matcher.Match(det.Embedding)
		if ident != nil {
			return Decision{Status: StatusImage, Box: &det.Box, UserID: ident.UserID, Score: score}
		}
		return Decision{Status: StatusUnknown, Box: &det.Box, Score: score}
	case liveness.ConfirmedSpoof:
		return Decision{Status: StatusSpoof, Box: &det.Box}
	default:
		return Decision{Status: StatusWaiting, Box: &det.Box}
	}
}
