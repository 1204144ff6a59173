// Package inference is the HTTP client for the face detection and
// antispoofing inference server.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tranvd/attendance-kiosk/internal/geometry"
	"github.com/tranvd/attendance-kiosk/internal/pipeline"
	"github.com/tranvd/attendance-kiosk/internal/recognition"
)

const defaultInferenceURL = "http://localhost:8000"

// Client talks to the inference server. It implements pipeline.Detector and
// pipeline.SpoofClassifier.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new inference client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultInferenceURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// faceDetection represents a single detected face in the server response.
type faceDetection struct {
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
	Embedding []float32 `json:"embedding"`
}

// detectResponse represents the response from the detection endpoint.
type detectResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
}

// classifyRequest represents the request body for the antispoofing endpoint.
type classifyRequest struct {
	BBox []int `json:"bbox"` // [x1, y1, x2, y2]
}

// classifyResponse represents the response from the antispoofing endpoint.
type classifyResponse struct {
	IsReal     bool    `json:"is_real"`
	Confidence float64 `json:"confidence"`
}

// postMultipartFrame constructs a multipart form with the frame image and
// optional extra fields, and posts it to the given endpoint.
func (c *Client) postMultipartFrame(ctx context.Context, endpoint string, frame pipeline.Frame, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(frame.Data); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Detect finds faces in a frame and returns their boxes and embeddings.
func (c *Client) Detect(ctx context.Context, frame pipeline.Frame) ([]pipeline.Detection, error) {
	body, err := c.postMultipartFrame(ctx, "/detect", frame, nil)
	if err != nil {
		return nil, err
	}

	var detResp detectResponse
	if err := json.Unmarshal(body, &detResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	detections := make([]pipeline.Detection, 0, len(detResp.Faces))
	for _, face := range detResp.Faces {
		if len(face.BBox) != 4 {
			return nil, fmt.Errorf("malformed bbox in response: %v", face.BBox)
		}
		detections = append(detections, pipeline.Detection{
			Box: geometry.Rect{
				X1: int(face.BBox[0]),
				Y1: int(face.BBox[1]),
				X2: int(face.BBox[2]),
				Y2: int(face.BBox[3]),
			},
			Embedding: recognition.Embedding(face.Embedding),
		})
	}

	return detections, nil
}

// Classify decides whether the face inside the given box is a live person.
func (c *Client) Classify(ctx context.Context, frame pipeline.Frame, box geometry.Rect) (bool, float64, error) {
	bbox, err := json.Marshal(classifyRequest{BBox: []int{box.X1, box.Y1, box.X2, box.Y2}})
	if err != nil {
		return false, 0, fmt.Errorf("failed to marshal bbox: %w", err)
	}

	body, err := c.postMultipartFrame(ctx, "/antispoof", frame, map[string]string{
		"request": string(bbox),
	})
	if err != nil {
		return false, 0, err
	}

	var clsResp classifyResponse
	if err := json.Unmarshal(body, &clsResp); err != nil {
		return false, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	return clsResp.IsReal, clsResp.Confidence, nil
}

// Verify interface compliance.
var _ pipeline.Detector = (*Client)(nil)
var _ pipeline.SpoofClassifier = (*Client)(nil)
