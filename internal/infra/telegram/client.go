// Package telegram is a hand-rolled client for the slice of the Telegram
// Bot API this bot needs: long polling, messages with inline keyboards,
// callback answers, chat actions and file downloads. JSON over HTTPS, no
// webhooks.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.telegram.org"

// maxDownloadBytes caps getFile downloads. Bot API files top out at 20 MB.
const maxDownloadBytes = 20 << 20

// Client talks to one bot's API surface.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	log     zerolog.Logger
}

// NewClient creates a client for the given bot token. An empty baseURL
// selects api.telegram.org; tests point it at a local server.
func NewClient(token, baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		log:     log,
	}
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// call posts payload to the named method and decodes the result envelope.
// A 429 with retry_after is retried once after the advised pause.
func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: encode: %w", method, err)
	}

	for attempt := 0; ; attempt++ {
		url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("telegram %s: %w", method, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("telegram %s: %w", method, err)
		}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("telegram %s: read: %w", method, err)
		}

		var env apiResponse
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("telegram %s: http %d: %w", method, resp.StatusCode, err)
		}
		if env.OK {
			if result != nil && len(env.Result) > 0 {
				if err := json.Unmarshal(env.Result, result); err != nil {
					return fmt.Errorf("telegram %s: decode result: %w", method, err)
				}
			}
			return nil
		}

		if env.ErrorCode == http.StatusTooManyRequests && env.Parameters != nil && attempt == 0 {
			wait := time.Duration(env.Parameters.RetryAfter) * time.Second
			c.log.Warn().Str("method", method).Dur("retry_after", wait).Msg("telegram rate limited")
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return fmt.Errorf("telegram %s: api error %d: %s", method, env.ErrorCode, env.Description)
	}
}

// GetMe identifies the bot account; used at startup as a token check.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var me User
	err := c.call(ctx, "getMe", struct{}{}, &me)
	return me, err
}

// GetUpdates long-polls for updates past offset and returns them with the
// next offset to ack everything received.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	payload := struct {
		Offset         int64    `json:"offset,omitempty"`
		Timeout        int      `json:"timeout"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{
		Offset:         offset,
		Timeout:        secs,
		AllowedUpdates: []string{"message", "edited_message", "callback_query"},
	}

	// The long poll holds the connection open for up to timeout; give the
	// HTTP layer headroom past that.
	ctx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// SendOptions tweak an outgoing or edited message.
type SendOptions struct {
	ParseMode      string
	ReplyMarkup    *InlineKeyboard
	DisablePreview bool
}

type sendMessageRequest struct {
	ChatID                int64           `json:"chat_id"`
	MessageID             int64           `json:"message_id,omitempty"`
	Text                  string          `json:"text"`
	ParseMode             string          `json:"parse_mode,omitempty"`
	ReplyMarkup           *InlineKeyboard `json:"reply_markup,omitempty"`
	DisableWebPagePreview bool            `json:"disable_web_page_preview,omitempty"`
}

// SendMessage delivers text to a chat and returns the new message id, which
// callers keep when they intend to edit the message later.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (int64, error) {
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if opts != nil {
		req.ParseMode = opts.ParseMode
		req.ReplyMarkup = opts.ReplyMarkup
		req.DisableWebPagePreview = opts.DisablePreview
	}
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditMessageText replaces the text of a previously sent message. Telegram
// rejects edits whose text is unchanged; callers avoid those.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, opts *SendOptions) error {
	req := sendMessageRequest{ChatID: chatID, MessageID: messageID, Text: text}
	if opts != nil {
		req.ParseMode = opts.ParseMode
		req.ReplyMarkup = opts.ReplyMarkup
		req.DisableWebPagePreview = opts.DisablePreview
	}
	return c.call(ctx, "editMessageText", req, nil)
}

// AnswerCallback acks an inline button press, optionally with a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := struct {
		CallbackQueryID string `json:"callback_query_id"`
		Text            string `json:"text,omitempty"`
	}{CallbackQueryID: callbackID, Text: text}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

// SendChatAction shows "typing" or "upload_photo" style indicators.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	payload := struct {
		ChatID int64  `json:"chat_id"`
		Action string `json:"action"`
	}{ChatID: chatID, Action: action}
	return c.call(ctx, "sendChatAction", payload, nil)
}

// SendPhotoURL sends an image by URL, letting Telegram fetch it.
func (c *Client) SendPhotoURL(ctx context.Context, chatID int64, photoURL, caption string) error {
	payload := struct {
		ChatID  int64  `json:"chat_id"`
		Photo   string `json:"photo"`
		Caption string `json:"caption,omitempty"`
	}{ChatID: chatID, Photo: photoURL, Caption: caption}
	return c.call(ctx, "sendPhoto", payload, nil)
}

// SendDocument uploads a file as a document attachment.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("telegram sendDocument: http %d: %w", resp.StatusCode, err)
	}
	if !env.OK {
		return fmt.Errorf("telegram sendDocument: api error %d: %s", env.ErrorCode, env.Description)
	}
	return nil
}

// DownloadFile resolves a file id and fetches its content.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	payload := struct {
		FileID string `json:"file_id"`
	}{FileID: fileID}
	var f File
	if err := c.call(ctx, "getFile", payload, &f); err != nil {
		return nil, err
	}
	if f.FilePath == "" {
		return nil, fmt.Errorf("telegram getFile: empty file_path for %s", fileID)
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, f.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram download: http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("telegram download: file exceeds %d bytes", maxDownloadBytes)
	}
	return data, nil
}
