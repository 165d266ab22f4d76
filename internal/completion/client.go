package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Completer — контракт этапа генерации: один промпт, один сырой текст.
// Детерминизм выхода не гарантируется, кэширования нет.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client — тонкий HTTP-клиент OpenAI-совместимого chat-completions API.
// Ровно один исходящий вызов на инвокацию: ретраи — ответственность
// вызывающего (сервисный слой), здесь их нет намеренно.
type Client struct {
	opts   Options
	client *http.Client
	logger *zap.Logger
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger.Named("completion"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion: failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.opts.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("completion: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &TimeoutError{Wait: c.opts.Timeout, Cause: err}
		}
		return "", fmt.Errorf("completion: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("completion: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Status: resp.StatusCode, Body: string(body)}
	}

	// Достаем текст первого choice, не описывая всю схему ответа
	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", &Error{Status: resp.StatusCode, Body: "response has no message content"}
	}

	c.logger.Debug("completion received",
		zap.String("model", c.opts.Model),
		zap.Duration("took", time.Since(start)),
		zap.Int("content_len", len(content.String())),
	)
	return content.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
