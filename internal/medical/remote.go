package medical

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/config"
)

// ErrRateLimited is returned before a request is even attempted when
// the per-minute budget is exhausted. No retries, no queueing.
var ErrRateLimited = errors.New("request rate limit exceeded")

const extractionSystemPrompt = "You are a medical data extraction assistant. " +
	"Extract structured data from medical documents and respond with valid JSON only, no markdown."

const extractionUserPromptFmt = `Extract medical data from the following document text.
Respond with a JSON object containing exactly these fields:
- "document_type": string describing the kind of document
- "summary": one or two sentence overview
- "biomarkers": array of {"name", "value" (number), "unit", "reference_range", "status" ("normal"|"high"|"low")}
- "medications": array of {"name", "dosage", "frequency", "reason"}
- "diagnoses": array of strings
- "recommendations": array of strings

Document text:
%s`

const insightsSystemPrompt = "You are a health insights assistant. " +
	"Connect medical findings with daily lifestyle logs in plain, encouraging language. Do not give medical advice."

// rateLimiter is a sliding one-minute window. Calls past the budget are
// rejected rather than delayed.
type rateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	stamps []time.Time
}

func newRateLimiter(max int) *rateLimiter {
	return &rateLimiter{max: max, window: time.Minute}
}

func (r *rateLimiter) allow(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := now.Add(-r.window)
	kept := r.stamps[:0]
	for _, s := range r.stamps {
		if s.After(cutoff) {
			kept = append(kept, s)
		}
	}
	r.stamps = kept
	if len(r.stamps) >= r.max {
		return false
	}
	r.stamps = append(r.stamps, now)
	return true
}

// RemoteExtractor calls an OpenAI-compatible chat completions endpoint.
type RemoteExtractor struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
	limiter     *rateLimiter
	logger      internal.Logger
	now         func() time.Time
}

func NewRemoteExtractor(cfg *config.Config, logger internal.Logger) *RemoteExtractor {
	return &RemoteExtractor{
		apiKey:      cfg.OpenAIAPIKey,
		baseURL:     strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:       cfg.OpenAIModel,
		temperature: cfg.OpenAITemperature,
		client:      &http.Client{Timeout: 60 * time.Second},
		limiter:     newRateLimiter(cfg.OpenAIMaxPerMinute),
		logger:      logger,
		now:         time.Now,
	}
}

var _ Extractor = (*RemoteExtractor)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *RemoteExtractor) complete(ctx context.Context, system, user string) (string, error) {
	if !e.limiter.allow(e.now()) {
		return "", ErrRateLimited
	}

	body, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: e.temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// stripJSONFence removes a surrounding markdown code fence, which some
// models emit despite instructions.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func (e *RemoteExtractor) ExtractMedicalData(ctx context.Context, text string) (*internal.ExtractedMedicalData, error) {
	content, err := e.complete(ctx, extractionSystemPrompt, fmt.Sprintf(extractionUserPromptFmt, text))
	if err != nil {
		return nil, err
	}

	payload := stripJSONFence(content)

	// Structural check before committing to the typed decode, so that a
	// model answering with prose fails cleanly.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &probe); err != nil {
		return nil, fmt.Errorf("model response is not a JSON object: %w", err)
	}
	for _, field := range []string{"document_type", "summary", "biomarkers"} {
		if _, ok := probe[field]; !ok {
			return nil, fmt.Errorf("model response missing %q field", field)
		}
	}

	var data internal.ExtractedMedicalData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("decode extracted data: %w", err)
	}
	data.ExtractedAt = e.now()
	if data.Biomarkers == nil {
		data.Biomarkers = []internal.Biomarker{}
	}
	if data.Medications == nil {
		data.Medications = []internal.Medication{}
	}
	if data.Diagnoses == nil {
		data.Diagnoses = []string{}
	}
	if data.Recommendations == nil {
		data.Recommendations = []string{}
	}
	return &data, nil
}

func (e *RemoteExtractor) GenerateInsights(ctx context.Context, data *internal.ExtractedMedicalData, logs []internal.Log) (string, error) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	recent := logs
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	logsJSON, err := json.Marshal(recent)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Medical document data:\n%s\n\nRecent daily lifestyle logs:\n%s\n\n"+
			"Write a short insight narrative connecting the medical findings with the lifestyle data. "+
			"Use plain text sections, not markdown.",
		dataJSON, logsJSON)

	content, err := e.complete(ctx, insightsSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}
