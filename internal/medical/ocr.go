package medical

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/mironism/helsi/internal"
)

// OCRClient extracts plain text from an uploaded file.
type OCRClient interface {
	ExtractText(ctx context.Context, fileName, mimeType string, content []byte) (string, error)
}

// RemoteOCRClient posts the file to an external OCR service as
// multipart form data and expects {"text": "..."} back.
type RemoteOCRClient struct {
	url    string
	client *http.Client
	logger internal.Logger
}

func NewRemoteOCRClient(url string, logger internal.Logger) *RemoteOCRClient {
	return &RemoteOCRClient{
		url:    url,
		client: &http.Client{Timeout: 120 * time.Second},
		logger: logger,
	}
}

var _ OCRClient = (*RemoteOCRClient)(nil)

func (c *RemoteOCRClient) ExtractText(ctx context.Context, fileName, mimeType string, content []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if parsed.Text == "" {
		return "", fmt.Errorf("ocr service extracted no text from %s", fileName)
	}
	return parsed.Text, nil
}

// SimulatedOCRClient stands in when no OCR service is configured: it
// renders a canned report keyed by the file name.
type SimulatedOCRClient struct {
	now func() time.Time
}

func NewSimulatedOCRClient() *SimulatedOCRClient {
	return &SimulatedOCRClient{now: time.Now}
}

var _ OCRClient = (*SimulatedOCRClient)(nil)

func (c *SimulatedOCRClient) ExtractText(ctx context.Context, fileName, mimeType string, content []byte) (string, error) {
	return GenerateSimulatedReport(fileName, mimeType, c.now()), nil
}
