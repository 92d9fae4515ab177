// Package llm implements the optional narrative-enrichment service as a
// client for any OpenAI-compatible chat-completions API. All failures are
// returned as model.EnrichmentError and recovered by the participant mapper.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/siherrmann/caseweaver/core/participant"
	"github.com/siherrmann/caseweaver/model"
)

const systemPrompt = `You are an instructional designer improving character profiles for a professional-ethics teaching scenario.
For each profile, rewrite the background into one vivid sentence and the character arc into one sentence describing how the character changes over the case.
Also write two or three short instructor-facing teaching notes about the ethical dynamics between the participants.
Respond with JSON only, in the form {"profiles": [{"id": "...", "background": "...", "character_arc": "..."}], "teaching_notes": ["..."]}.
Keep every id exactly as given.`

// Config holds the connection parameters for the enrichment service.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Enricher calls an OpenAI-compatible chat-completions endpoint in JSON mode
// to expand profile text and produce teaching notes.
type Enricher struct {
	config Config
	client *http.Client
}

// NewEnricher creates an enricher. A zero timeout defaults to 60 seconds;
// the participant mapper additionally bounds the whole call with its own
// enrichment timeout.
func NewEnricher(config Config) *Enricher {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Enricher{
		config: config,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Enhance implements participant.NarrativeEnricher.
func (e *Enricher) Enhance(ctx context.Context, profiles []*model.ParticipantProfile, relationships map[string][]string) (*participant.Enhancement, error) {
	prompt, err := buildPrompt(profiles, relationships)
	if err != nil {
		return nil, &model.EnrichmentError{Err: err}
	}

	body := chatCompletionRequest{
		Model: e.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.7,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	content, err := e.doChat(ctx, body)
	if err != nil {
		return nil, &model.EnrichmentError{Err: err}
	}

	enhancement := &participant.Enhancement{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), enhancement); err != nil {
		return nil, &model.EnrichmentError{Err: fmt.Errorf("decoding enhancement: %w", err)}
	}

	return enhancement, nil
}

// buildPrompt serializes the profiles and adjacency for the model.
func buildPrompt(profiles []*model.ParticipantProfile, relationships map[string][]string) (string, error) {
	input := struct {
		Profiles      []*model.ParticipantProfile `json:"profiles"`
		Relationships map[string][]string         `json:"relationships"`
	}{
		Profiles:      profiles,
		Relationships: relationships,
	}

	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding profiles: %w", err)
	}

	return fmt.Sprintf("Enrich these participant profiles:\n%s", data), nil
}

func (e *Enricher) doChat(ctx context.Context, body chatCompletionRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(e.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("enrichment API error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}
