package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("TESTTOKEN", srv.URL, zerolog.Nop())
}

func okEnvelope(result any) []byte {
	raw, _ := json.Marshal(result)
	out, _ := json.Marshal(map[string]json.RawMessage{
		"ok":     json.RawMessage("true"),
		"result": raw,
	})
	return out
}

func TestGetUpdates_AdvancesOffset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/botTESTTOKEN/getUpdates") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Offset  int64 `json:"offset"`
			Timeout int   `json:"timeout"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Offset != 5 || req.Timeout != 25 {
			t.Errorf("request = %+v", req)
		}
		w.Write(okEnvelope([]Update{
			{UpdateID: 7, Message: &Message{MessageID: 1, Chat: &Chat{ID: 42}, Text: "hello"}},
			{UpdateID: 9, CallbackQuery: &CallbackQuery{ID: "cb1", Data: "buy:1"}},
		}))
	})

	updates, next, err := c.GetUpdates(context.Background(), 5, 25*time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() error: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates", len(updates))
	}
	if next != 10 {
		t.Errorf("next offset = %d, want 10", next)
	}
	if updates[0].Message.Text != "hello" || updates[1].CallbackQuery.Data != "buy:1" {
		t.Errorf("updates decoded wrong: %+v", updates)
	}
}

func TestSendMessage_ReturnsMessageID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ChatID != 42 || req.Text != "hi" || req.ParseMode != "Markdown" {
			t.Errorf("request = %+v", req)
		}
		if req.ReplyMarkup == nil || len(req.ReplyMarkup.InlineKeyboard) != 1 {
			t.Error("reply markup missing")
		}
		w.Write(okEnvelope(Message{MessageID: 99}))
	})

	id, err := c.SendMessage(context.Background(), 42, "hi", &SendOptions{
		ParseMode:   "Markdown",
		ReplyMarkup: Keyboard(Row(InlineButton{Text: "Buy", CallbackData: "buy:1"})),
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if id != 99 {
		t.Errorf("message id = %d, want 99", id)
	}
}

func TestCall_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: message is not modified"}`)
	})

	err := c.EditMessageText(context.Background(), 42, 99, "same", nil)
	if err == nil || !strings.Contains(err.Error(), "message is not modified") {
		t.Errorf("error = %v, want description surfaced", err)
	}
}

func TestCall_RateLimitRetriesOnce(t *testing.T) {
	var calls atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":0}}`)
			return
		}
		w.Write(okEnvelope(Message{MessageID: 5}))
	})

	id, err := c.SendMessage(context.Background(), 1, "x", nil)
	if err != nil {
		t.Fatalf("SendMessage() after retry error: %v", err)
	}
	if id != 5 || calls.Load() != 2 {
		t.Errorf("id=%d calls=%d, want 5 and 2", id, calls.Load())
	}
}

func TestDownloadFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getFile"):
			w.Write(okEnvelope(File{FileID: "f1", FilePath: "documents/report.pdf"}))
		case r.URL.Path == "/file/botTESTTOKEN/documents/report.pdf":
			w.Write([]byte("pdf-bytes"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	data, err := c.DownloadFile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("DownloadFile() error: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestMessageHelpers(t *testing.T) {
	m := &Message{Caption: " a caption "}
	if got := m.TextOrCaption(); got != "a caption" {
		t.Errorf("TextOrCaption() = %q", got)
	}

	m = &Message{Photo: []PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "big", Width: 800, Height: 600},
		{FileID: "mid", Width: 320, Height: 240},
	}}
	if got := m.LargestPhoto(); got == nil || got.FileID != "big" {
		t.Errorf("LargestPhoto() = %+v", got)
	}

	u := &User{FirstName: "Jan", LastName: "Kowalski"}
	if got := u.DisplayName(); got != "Jan Kowalski" {
		t.Errorf("DisplayName() = %q", got)
	}
	u = &User{Username: "jank"}
	if got := u.DisplayName(); got != "@jank" {
		t.Errorf("DisplayName() = %q", got)
	}
}
