// Package llm kapselt den Zugriff auf das OpenAI Chat-Completions-Backend.
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

	"go.uber.org/zap"

	"trial-hand/config"
)

// CompletionOptions beschreibt eine einzelne Chat-Anfrage. Ein leerer
// SystemPrompt lässt die System-Message weg.
type CompletionOptions struct {
	SystemPrompt string
	Prompt       string
	Temperature  float64
}

// Completer ist die schmale Schnittstelle, über die der Generator das
// Text-Backend anspricht. Tests hängen hier einen Stub ein.
type Completer interface {
	Complete(ctx context.Context, opts CompletionOptions) (string, error)
}

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
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client ist der HTTP-Client für die Chat-Completions-API.
type Client struct {
	Config     *config.Config
	Logger     *zap.Logger
	httpClient *http.Client
}

// NewClient erstellt einen neuen OpenAI-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		Config:     cfg,
		Logger:     logger,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete führt eine Chat-Completion aus und gibt den getrimmten Antworttext zurück.
func (c *Client) Complete(ctx context.Context, opts CompletionOptions) (string, error) {
	var messages []chatMessage
	if opts.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: opts.Prompt})

	payload := chatRequest{
		Model:       c.Config.OpenAIModel,
		Messages:    messages,
		Temperature: opts.Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Config.OpenAIBaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.OpenAIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Logger.Error("Chat-Completion-Anfrage fehlgeschlagen", zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.Logger.Error("OpenAI hat nicht-200-Status zurückgegeben",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return "", fmt.Errorf("chat completion failed: status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
