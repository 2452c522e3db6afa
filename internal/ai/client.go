package ai

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

// Message сообщение диалога с моделью
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options параметры запроса
type Options struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Chatter узкий контракт LLM-коллаборатора. Любой сбой вызова
// трактуется вызывающим как "подсказки нет", не как ошибка сессии.
type Chatter interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// HTTPClient клиент OpenAI-совместимого chat-эндпоинта
type HTTPClient struct {
	endpoint string
	model    string
	apiKey   string
	httpc    *http.Client
}

// NewHTTPClient endpoint — полный URL chat completions
func NewHTTPClient(endpoint, model, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ai: api key is empty")
	}

	body := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	if opts.Temperature > 0 {
		body["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}

	payload, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ai chat %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ai chat: bad response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("ai chat: empty content")
	}
	return parsed.Choices[0].Message.Content, nil
}
