package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultEndpoint is the Web3Forms submission URL.
const DefaultEndpoint = "https://api.web3forms.com/submit"

// Web3FormsClient posts submissions to a Web3Forms-compatible form endpoint.
type Web3FormsClient struct {
	endpoint  string
	accessKey string
	fromName  string
	client    *http.Client
	now       func() time.Time
}

func NewWeb3FormsClient(endpoint, accessKey, fromName string, client *http.Client) *Web3FormsClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if fromName == "" {
		fromName = "Matrimonial Quiz System"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Web3FormsClient{
		endpoint:  endpoint,
		accessKey: accessKey,
		fromName:  fromName,
		client:    client,
		now:       time.Now,
	}
}

type formPayload struct {
	AccessKey       string `json:"access_key"`
	Subject         string `json:"subject"`
	FromName        string `json:"from_name"`
	ParticipantName string `json:"participant_name"`
	QuizScore       string `json:"quiz_score"`
	ResultMessage   string `json:"result_message"`
	Timestamp       string `json:"timestamp"`
	DetailedAnswers string `json:"detailed_answers"`
}

type formResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Web3FormsClient) Notify(ctx context.Context, sub Submission) error {
	body, err := json.Marshal(formPayload{
		AccessKey:       c.accessKey,
		Subject:         sub.Subject(),
		FromName:        c.fromName,
		ParticipantName: sub.ParticipantName,
		QuizScore:       fmt.Sprintf("%d%%", sub.Percentage),
		ResultMessage:   sub.ResultLabel,
		Timestamp:       c.now().UTC().Format(time.RFC3339),
		DetailedAnswers: sub.Answers,
	})
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	var result formResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 || !result.Success {
		return fmt.Errorf("submission rejected (status %d): %s", resp.StatusCode, result.Message)
	}
	return nil
}
