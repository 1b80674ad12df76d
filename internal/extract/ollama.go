package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatClient is the minimal language-model surface the extractor needs: a
// single system prompt in, a structured JSON document out.
type ChatClient interface {
	Chat(ctx context.Context, prompt string, format json.RawMessage) (json.RawMessage, error)
}

// OllamaClient talks to a locally hosted Ollama server's /api/chat
// endpoint, requesting structured output against a JSON schema at
// temperature zero so extractions stay deterministic for a given model.
type OllamaClient struct {
	host   string
	model  string
	client *http.Client
}

// DefaultHost is the standard local Ollama address.
const DefaultHost = "http://localhost:11434"

// NewOllamaClient creates a client for the given host and model name. The
// model must already be pulled by ollama.
func NewOllamaClient(host, model string) *OllamaClient {
	if host == "" {
		host = DefaultHost
	}
	return &OllamaClient{
		host:  host,
		model: model,
		// Local models can be slow on first load.
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// Chat sends the prompt as a single system message and decodes the model's
// reply content as JSON.
func (c *OllamaClient) Chat(ctx context.Context, prompt string, format json.RawMessage) (json.RawMessage, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "system", Content: prompt}},
		Stream:   false,
		Format:   format,
		Options:  map[string]any{"temperature": 0},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned %s: %s", resp.Status, data)
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, fmt.Errorf("parsing ollama response: %w", err)
	}
	if cr.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", cr.Error)
	}
	if !json.Valid([]byte(cr.Message.Content)) {
		return nil, fmt.Errorf("model reply is not valid JSON: %q", cr.Message.Content)
	}
	return json.RawMessage(cr.Message.Content), nil
}
