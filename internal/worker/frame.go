// Package worker contains the two kiosk workers: the frame worker that runs
// the per-frame decision pipeline, and the ledger worker that applies
// recognitions to the attendance ledger. They communicate over a buffered
// channel so a slow database never stalls frame processing.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tranvd/attendance-kiosk/internal/alerting"
	"github.com/tranvd/attendance-kiosk/internal/geometry"
	"github.com/tranvd/attendance-kiosk/internal/pipeline"
	"github.com/tranvd/attendance-kiosk/internal/store"
)

// Recognition is one confirmed identity event handed to the ledger worker.
type Recognition struct {
	EmployeeID string
	At         time.Time
}

// FrameSource produces camera frames. Next blocks until a frame is available
// or the context is done.
type FrameSource interface {
	Next(ctx context.Context) (pipeline.Frame, error)
}

// FrameWorker runs the decision pipeline over a frame source. It owns the
// pipeline and the snapshot throttle; neither is safe for concurrent use.
type FrameWorker struct {
	source   FrameSource
	detector pipeline.Detector
	pipe     *pipeline.Pipeline
	throttle *alerting.Throttle
	snaps    *alerting.Snapshotter
	uploader alerting.Uploader
	alerts   store.AlertStore

	out chan<- Recognition

	// lastRecognized suppresses repeat recognitions of the same person
	// standing in front of the camera. Cleared when the face leaves.
	lastRecognized string

	dropped int // recognitions dropped because the ledger queue was full
}

// FrameWorkerConfig collects the frame worker collaborators.
type FrameWorkerConfig struct {
	Source      FrameSource
	Detector    pipeline.Detector
	Pipeline    *pipeline.Pipeline
	Throttle    *alerting.Throttle
	Snapshotter *alerting.Snapshotter
	Uploader    alerting.Uploader // optional
	Alerts      store.AlertStore  // optional
	Out         chan<- Recognition
}

// NewFrameWorker creates a frame worker.
func NewFrameWorker(cfg FrameWorkerConfig) *FrameWorker {
	return &FrameWorker{
		source:   cfg.Source,
		detector: cfg.Detector,
		pipe:     cfg.Pipeline,
		throttle: cfg.Throttle,
		snaps:    cfg.Snapshotter,
		uploader: cfg.Uploader,
		alerts:   cfg.Alerts,
		out:      cfg.Out,
	}
}

// Run processes frames until the context is done.
func (w *FrameWorker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		frame, err := w.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("frame worker: failed to grab frame: %v", err)
			continue
		}

		w.processFrame(ctx, frame)
	}
}

// Dropped returns the number of recognitions dropped on a full ledger queue.
func (w *FrameWorker) Dropped() int {
	return w.dropped
}

func (w *FrameWorker) processFrame(ctx context.Context, frame pipeline.Frame) {
	detections, err := w.detector.Detect(ctx, frame)
	if err != nil {
		// A failed detection counts as an empty frame: the no-face branch
		// resets the liveness counters, so a run of real frames cannot
		// survive a detector outage.
		log.Printf("frame worker: detection failed: %v", err)
		detections = nil
	}

	decision := w.pipe.ProcessFrame(ctx, frame, detections)
	now := time.Now()

	if req := w.throttle.OnStatus(decision.Status, now); req != nil && decision.Box != nil {
		go w.saveViolation(frame, *decision.Box, req)
	}

	switch decision.Status {
	case pipeline.StatusImage:
		if decision.UserID == w.lastRecognized {
			return
		}
		w.lastRecognized = decision.UserID
		w.enqueue(Recognition{EmployeeID: decision.UserID, At: now})
	case pipeline.StatusWaiting:
		if decision.Box == nil {
			w.lastRecognized = ""
		}
	}
}

// enqueue hands a recognition to the ledger worker without blocking. A full
// queue drops the event; the person is still standing there, the next
// confirmed frame retries.
func (w *FrameWorker) enqueue(rec Recognition) {
	select {
	case w.out <- rec:
	default:
		w.dropped++
		w.lastRecognized = ""
		log.Printf("frame worker: ledger queue full, dropped recognition of %s", rec.EmployeeID)
	}
}

// saveViolation persists and uploads a violation snapshot. Runs in its own
// goroutine; failures are logged and swallowed so the frame loop never
// stalls on storage.
func (w *FrameWorker) saveViolation(frame pipeline.Frame, box geometry.Rect, req *alerting.SnapshotRequest) {
	path, err := w.snaps.Save(frame, box, req)
	if err != nil {
		log.Printf("frame worker: failed to save %s snapshot: %v", req.Status, err)
		return
	}

	if w.uploader == nil || w.alerts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := w.uploader.Upload(ctx, path, req.Status)
	if err != nil {
		log.Printf("frame worker: failed to upload %s snapshot: %v", req.Status, err)
		return
	}

	entry := store.AlertEntry{
		ID:        uuid.NewString(),
		ImageURL:  url,
		Message:   alertMessage(req.Status),
		Timestamp: req.At,
	}
	if err := w.alerts.AppendAlert(ctx, entry); err != nil {
		log.Printf("frame worker: failed to record alert: %v", err)
	}
}

func alertMessage(status pipeline.Status) string {
	switch status {
	case pipeline.StatusSpoof:
		return "presentation attack detected"
	case pipeline.StatusUnknown:
		return "unrecognized face detected"
	}
	return string(status)
}
