package discord

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	testToken   = "bot-secret"
	testChannel = "42"
)

// fakeDiscord emulates the channel messages, webhook and attachment endpoints.
// Messages are kept newest first; webhook uploads land in a separate history
// the bot endpoints never return.
type fakeDiscord struct {
	t   *testing.T
	srv *httptest.Server

	mu          sync.Mutex
	messages    []message
	webhookMsgs []message
	contents    map[string]string
	nextID      int

	requests     atomic.Int64
	historyPages atomic.Int64
	lastLimit    atomic.Int64

	failStatus atomic.Int64
}

func newFakeDiscord(t *testing.T) *fakeDiscord {
	f := &fakeDiscord{t: t, contents: map[string]string{}, nextID: 1000}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /channels/{id}/messages", f.handleBotUpload)
	mux.HandleFunc("GET /channels/{id}/messages", f.handleHistory)
	mux.HandleFunc("POST /webhooks/{id}/{token}", f.handleWebhook)
	mux.HandleFunc("GET /attachments/{id}", f.handleAttachment)

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if status := f.failStatus.Load(); status != 0 {
			http.Error(w, `{"message": "failure"}`, int(status))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDiscord) webhookURL() string {
	return f.srv.URL + "/webhooks/1/hook-token"
}

func (f *fakeDiscord) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bot "+testToken || r.PathValue("id") != testChannel {
		http.Error(w, `{"message": "401: Unauthorized"}`, http.StatusUnauthorized)
		return false
	}
	return true
}

// post prepends a message carrying one attachment per filename.
func (f *fakeDiscord) post(toWebhook bool, files ...[2]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	msg := message{ID: strconv.Itoa(f.nextID)}
	for _, file := range files {
		f.nextID++
		id := strconv.Itoa(f.nextID)
		f.contents[id] = file[1]
		msg.Attachments = append(msg.Attachments, attachment{
			ID:       id,
			Filename: file[0],
			URL:      f.srv.URL + "/attachments/" + id,
		})
	}

	if toWebhook {
		f.webhookMsgs = append([]message{msg}, f.webhookMsgs...)
	} else {
		f.messages = append([]message{msg}, f.messages...)
	}
}

func (f *fakeDiscord) webhookCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.webhookMsgs)
}

// postText prepends a message without attachments.
func (f *fakeDiscord) postText() {
	f.post(false)
}

func (f *fakeDiscord) readUpload(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	file, header, err := r.FormFile(fileFieldName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	defer file.Close()

	data, _ := io.ReadAll(file)
	return header.Filename, string(data), true
}

func (f *fakeDiscord) handleBotUpload(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	name, content, ok := f.readUpload(w, r)
	if !ok {
		return
	}
	f.post(false, [2]string{name, content})
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"id": "1"}`)
}

func (f *fakeDiscord) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "" {
		http.Error(w, "webhooks take no authorization", http.StatusBadRequest)
		return
	}
	name, content, ok := f.readUpload(w, r)
	if !ok {
		return
	}
	f.post(true, [2]string{name, content})
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeDiscord) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	f.historyPages.Add(1)

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	if limit > 100 {
		http.Error(w, `{"message": "limit too large"}`, http.StatusBadRequest)
		return
	}
	f.lastLimit.Store(int64(limit))

	f.mu.Lock()
	start := 0
	if before := r.URL.Query().Get("before"); before != "" {
		for i, m := range f.messages {
			if m.ID == before {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(f.messages))
	page := append([]message{}, f.messages[start:end]...)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func (f *fakeDiscord) handleAttachment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	content, ok := f.contents[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, content)
}
