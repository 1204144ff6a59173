package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tranvd/attendance-kiosk/internal/pipeline"
)

// HTTPUploader posts violation images to an upload endpoint as multipart
// form data and returns the hosted URL from the JSON response.
type HTTPUploader struct {
	baseURL string
	folder  string
	client  *http.Client
}

// NewHTTPUploader creates an uploader. The folder is used as a remote prefix;
// snapshots land under <folder>/<status>/.
func NewHTTPUploader(baseURL, folder string) *HTTPUploader {
	return &HTTPUploader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		folder:  folder,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// uploadResponse is the upload endpoint's JSON reply.
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends the image at the given path. Failures are returned to the
// caller, which logs and swallows them; uploads are best-effort telemetry.
func (u *HTTPUploader) Upload(ctx context.Context, imagePath string, status pipeline.Status) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("reading snapshot: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.WriteField("folder", path.Join(u.folder, string(status))); err != nil {
		return "", fmt.Errorf("failed to write folder field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload error (status %d): %s", resp.StatusCode, string(body))
	}

	var ur uploadResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if ur.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure_url")
	}

	return ur.SecureURL, nil
}
