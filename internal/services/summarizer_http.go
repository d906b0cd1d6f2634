package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPSummarizer calls a summarization endpoint over HTTP. The endpoint
// takes {"messages": [...]} and returns {"summary": "..."}.
type HTTPSummarizer struct {
	URL    string
	Client *http.Client
}

func NewHTTPSummarizer(url string) *HTTPSummarizer {
	return &HTTPSummarizer{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSummarizer) Summarize(ctx context.Context, messages []string) (string, error) {
	if s.URL == "" {
		return "", errors.New("summarizer not configured")
	}

	body, err := json.Marshal(map[string][]string{"messages": messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarizer responded with status %d", resp.StatusCode)
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Summary == "" {
		return "", errors.New("summarizer returned an empty summary")
	}
	return out.Summary, nil
}
