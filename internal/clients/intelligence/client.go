package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client calls the out-of-core content-enrichment service: definition
// simplification, translation generation, and example generation for a
// vocabulary sense. Batch production of this content is explicitly an
// external collaborator's job; this client only carries requests to it
// and decodes its responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	getToken   func() string
}

func NewClient(baseURL string, tokenProvider func() string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		getToken: tokenProvider,
	}
}

type EnrichSenseRequest struct {
	SenseID        string         `json:"sense_id"`
	Word           string         `json:"word"`
	POS            string         `json:"pos"`
	DefinitionEN   string         `json:"definition_en"`
	FrequencyRank  int            `json:"frequency_rank"`
	Constraints    EnrichConstraints `json:"constraints"`
}

type EnrichConstraints struct {
	TargetReadingLevel string `json:"target_reading_level"`
	IncludeExample     bool   `json:"include_example"`
	IncludeTranslation bool   `json:"include_translation"`
}

type EnrichSenseResponse struct {
	SenseID               string  `json:"sense_id"`
	DefinitionZH          string  `json:"definition_zh"`
	DefinitionZHExplained *string `json:"definition_zh_explanation,omitempty"`
	ExampleEN             string  `json:"example_en"`
	ExampleZH             string  `json:"example_zh"`
	TokensUsed            int     `json:"tokens_used"`
	Provider              string  `json:"provider"`
	LatencyMs             int     `json:"latency_ms"`
}

type SenseChatRequest struct {
	Message   string     `json:"message"`
	SenseID   string     `json:"sense_id"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
}

type SenseChatResponse struct {
	Response   string    `json:"response"`
	SessionID  uuid.UUID `json:"session_id"`
	SenseID    string    `json:"sense_id"`
	TokensUsed int       `json:"tokens_used"`
	LatencyMs  int       `json:"latency_ms"`
}

func (c *Client) EnrichSense(ctx context.Context, req EnrichSenseRequest, userID, userEmail, userRole string) (*EnrichSenseResponse, error) {
	url := fmt.Sprintf("%s/enrichment/sense", c.baseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Service-Token", c.getToken())
	httpReq.Header.Set("X-User-Id", userID)
	httpReq.Header.Set("X-User-Email", userEmail)
	httpReq.Header.Set("X-User-Role", userRole)

	if correlationID := ctx.Value("correlation_id"); correlationID != nil {
		httpReq.Header.Set("X-Correlation-ID", correlationID.(string))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intelligence service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result EnrichSenseResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}

func (c *Client) SendSenseChatMessage(ctx context.Context, req SenseChatRequest, userID, userEmail, userRole string) (*SenseChatResponse, error) {
	url := fmt.Sprintf("%s/enrichment/chat/message", c.baseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Service-Token", c.getToken())
	httpReq.Header.Set("X-User-Id", userID)
	httpReq.Header.Set("X-User-Email", userEmail)
	httpReq.Header.Set("X-User-Role", userRole)

	if correlationID := ctx.Value("correlation_id"); correlationID != nil {
		httpReq.Header.Set("X-Correlation-ID", correlationID.(string))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intelligence service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SenseChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}
