// Package upload submits documents to the processing service and installs
// the returned document model.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/process"
)

const (
	uploadPath     = "/upload-pdf/"
	defaultTimeout = 2 * time.Minute
	retryAttempts  = 3
)

// Client talks to the processing service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// envelope matches the service's response shape.
type envelope struct {
	Message string         `json:"message"`
	Data    process.Result `json:"data"`
}

// Upload submits the file at path and returns the processed document.
// Transport failures are retried with backoff; an HTTP error status is
// returned as-is (the service already rejected the document, retrying won't
// help).
func (c *Client) Upload(ctx context.Context, path string) (*document.Document, error) {
	var doc *document.Document
	err := retry.Do(
		func() error {
			d, err := c.uploadOnce(ctx, path)
			if err != nil {
				return err
			}
			doc = d
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			var statusErr *StatusError
			return !errors.As(err, &statusErr)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("processing service returned %d: %s", e.Code, e.Detail)
}

func (c *Client) uploadOnce(ctx context.Context, path string) (*document.Document, error) {
	body, contentType, err := multipartFile(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding processing response: %w", err)
	}
	if !env.Data.Success {
		return nil, fmt.Errorf("processing failed: %s", env.Data.Error)
	}
	doc := env.Data.Document
	return &doc, nil
}

// multipartFile builds the multipart body for one file upload.
func multipartFile(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
