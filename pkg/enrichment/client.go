package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the external enrichment service. One POST per operation
// submits the source text; the returned status URL is polled until the job
// reaches a terminal state.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type submitRequest struct {
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

type submitResponse struct {
	StatusURL string `json:"status_url"`
}

// JobStatus is the polled state of an asynchronous enrichment job. Exactly
// one of the result fields is populated, depending on the operation.
type JobStatus struct {
	Status            string   `json:"status"` // pending | processing | completed | success | failed
	Error             string   `json:"error,omitempty"`
	Summary           string   `json:"summary,omitempty"`
	TranslatedContent string   `json:"translated_content,omitempty"`
	Proofread         string   `json:"proofread,omitempty"`
	Paraphrase        string   `json:"paraphrase,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
}

// Succeeded reports a successful terminal status.
func (s *JobStatus) Succeeded() bool {
	return s.Status == "completed" || s.Status == "success"
}

// Failed reports a failed terminal status. Job failures are not transient
// and are never retried.
func (s *JobStatus) Failed() bool {
	return s.Status == "failed"
}

// Result extracts the operation-specific payload field as display text.
// Keyword lists are joined with ", ".
func (s *JobStatus) Result(op Operation) (string, error) {
	switch op {
	case OpSummarize:
		return s.Summary, nil
	case OpTranslate:
		return s.TranslatedContent, nil
	case OpProofread:
		return s.Proofread, nil
	case OpParaphrase:
		return s.Paraphrase, nil
	case OpKeywords:
		return strings.Join(s.Keywords, ", "), nil
	default:
		return "", fmt.Errorf("unknown operation: %s", op)
	}
}

// Submit posts the source text (and target language, for translation) to the
// operation-specific endpoint and returns the status URL to poll.
func (c *Client) Submit(ctx context.Context, apiKey string, op Operation, content, language string) (string, error) {
	reqBody := submitRequest{
		Content:  content,
		Language: language,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s", c.BaseURL, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("enrichment submit error: %s", string(bodyBytes))
	}

	var submitResp submitResponse
	if err := json.Unmarshal(bodyBytes, &submitResp); err != nil {
		return "", err
	}
	if submitResp.StatusURL == "" {
		return "", fmt.Errorf("enrichment submit: response carried no status_url")
	}

	return submitResp.StatusURL, nil
}

// Status reads the current state of a submitted job.
func (c *Client) Status(ctx context.Context, apiKey, statusURL string) (*JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment status error: %s", string(bodyBytes))
	}

	var status JobStatus
	if err := json.Unmarshal(bodyBytes, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
