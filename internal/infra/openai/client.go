// Package openai implements the completion provider against any
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kdziekansky/telegram2/internal/domain"
)

const defaultBaseURL = "https://api.openai.com"

// Client talks to the /v1 chat, image and vision endpoints. It implements
// domain.Completer.
type Client struct {
	baseURL     string
	apiKey      string
	imageModel  string
	visionModel string
	http        *http.Client
	log         zerolog.Logger
}

// New creates a client. An empty baseURL selects api.openai.com.
func New(baseURL, apiKey, imageModel, visionModel string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		imageModel:  imageModel,
		visionModel: visionModel,
		http:        &http.Client{Timeout: timeout},
		log:         log,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func toWireMessages(msgs []domain.CompletionMessage) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.http.Do(req)
}

func apiErrorFrom(status int, raw []byte) error {
	var out struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(raw, &out); err == nil && out.Error != nil && out.Error.Message != "" {
		return fmt.Errorf("openai http %d: %s", status, out.Error.Message)
	}
	return fmt.Errorf("openai http %d: %s", status, strings.TrimSpace(string(raw)))
}

// Complete runs one blocking chat completion and returns the full text.
func (c *Client) Complete(ctx context.Context, model string, messages []domain.CompletionMessage) (string, error) {
	start := time.Now()
	resp, err := c.post(ctx, "/v1/chat/completions", chatRequest{
		Model:    model,
		Messages: toWireMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiErrorFrom(resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}

	c.log.Debug().Str("model", model).Dur("took", time.Since(start)).Msg("completion done")
	return out.Choices[0].Message.Content, nil
}

// CompleteStream runs a streaming chat completion, invoking fn with each
// text delta as it arrives, and returns the assembled full text. A non-nil
// error from fn aborts the stream.
func (c *Client) CompleteStream(ctx context.Context, model string, messages []domain.CompletionMessage, fn func(delta string) error) (string, error) {
	resp, err := c.post(ctx, "/v1/chat/completions", chatRequest{
		Model:    model,
		Messages: toWireMessages(messages),
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", apiErrorFrom(resp.StatusCode, raw)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			c.log.Warn().Err(err).Msg("skipping malformed stream chunk")
			continue
		}
		if chunk.Error != nil {
			return full.String(), fmt.Errorf("openai stream: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if fn != nil {
			if err := fn(delta); err != nil {
				return full.String(), err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("openai stream: %w", err)
	}
	return full.String(), nil
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

// GenerateImage renders the prompt and returns a hosted image URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.post(ctx, "/v1/images/generations", imageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiErrorFrom(resp.StatusCode, raw)
	}

	var out imageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: decode: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return "", fmt.Errorf("openai: image response carries no url")
	}
	return out.Data[0].URL, nil
}

// AnalyzeImage sends the image inline as a data URI to the configured
// vision model together with the instruction.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, instruction string) (string, error) {
	if instruction == "" {
		instruction = "Describe this image."
	}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	content := []map[string]any{
		{"type": "text", "text": instruction},
		{"type": "image_url", "image_url": map[string]string{"url": uri}},
	}

	resp, err := c.post(ctx, "/v1/chat/completions", chatRequest{
		Model:    c.visionModel,
		Messages: []chatMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apiErrorFrom(resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}
