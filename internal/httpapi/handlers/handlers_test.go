package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"careermate/internal/ai"
	"careermate/internal/conversation"
	"careermate/internal/httpapi"
	"careermate/internal/httpapi/handlers"
)

type stubProvider struct {
	response string
}

func (p *stubProvider) Complete(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	return p.response, nil
}

func (p *stubProvider) Configured() bool { return true }

type memCache struct {
	entries map[string][]ai.Message
}

func (c *memCache) GetMessages(ctx context.Context, id string) ([]ai.Message, bool, error) {
	msgs, ok := c.entries[id]
	return msgs, ok, nil
}

func (c *memCache) SetMessages(ctx context.Context, id string, msgs []ai.Message, ttl time.Duration) error {
	c.entries[id] = msgs
	return nil
}

func (c *memCache) DeleteMessages(ctx context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

type stubLimiter struct {
	deny bool
}

func (l *stubLimiter) Allow(ctx context.Context, id string, limit int, window time.Duration) (bool, error) {
	return !l.deny, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, prov ai.Provider, limiter conversation.Limiter) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&conversation.Conversation{}, &conversation.Message{}, &conversation.AskJob{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	svc := conversation.NewService(
		conversation.NewRepo(db),
		&memCache{entries: make(map[string][]ai.Message)},
		limiter,
		prov,
		"system prompt",
		conversation.Policy{},
		zap.NewNop(),
	)
	h := handlers.NewHandler(db, nil, svc, nil, zap.NewNop())
	return httpapi.NewRouter(h), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestCreateAndPostMessage(t *testing.T) {
	prov := &stubProvider{response: `{"next_question": "What is your current role?", "examples": ["Developer"], "completed": false}`}
	r, _ := newTestRouter(t, prov, &stubLimiter{})

	w, env := doJSON(t, r, http.MethodPost, "/conversations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("create conversation: status %d", w.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.ID == "" {
		t.Fatalf("expected conversation id in %s", env.Data)
	}

	w, env = doJSON(t, r, http.MethodPost, "/conversations/"+created.ID+"/messages",
		`{"message": "Hi, I'm looking for a new job"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("post message: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ConversationID string `json:"conversation_id"`
		Role           string `json:"role"`
		Content        struct {
			NextQuestion string   `json:"next_question"`
			Examples     []string `json:"examples"`
			JobsList     []any    `json:"jobs_list"`
		} `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Role != "assistant" {
		t.Fatalf("expected assistant role, got %q", resp.Role)
	}
	if resp.Content.NextQuestion != "What is your current role?" {
		t.Fatalf("unexpected next question: %q", resp.Content.NextQuestion)
	}
	if resp.Content.JobsList == nil || len(resp.Content.JobsList) != 0 {
		t.Fatalf("continuing reply must carry an empty jobs list")
	}
}

func TestPostMessage_RateLimited(t *testing.T) {
	prov := &stubProvider{response: `{"next_question": "q", "completed": false}`}
	r, _ := newTestRouter(t, prov, &stubLimiter{deny: true})

	w, env := doJSON(t, r, http.MethodPost, "/conversations/"+uuid.NewString()+"/messages",
		`{"message": "hello"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if env.Message != "rate_limited" {
		t.Fatalf("expected rate_limited tag, got %q", env.Message)
	}
}

func TestGetHistory_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{}, &stubLimiter{})

	w, env := doJSON(t, r, http.MethodGet, "/conversations/"+uuid.NewString()+"/messages", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if env.Message != "not_found" {
		t.Fatalf("expected not_found tag, got %q", env.Message)
	}
}

func TestDeleteConversation_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{}, &stubLimiter{})

	w, env := doJSON(t, r, http.MethodDelete, "/conversations/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if env.Message != "not_found" {
		t.Fatalf("expected not_found tag, got %q", env.Message)
	}
}

func TestPostMessageAsync_QueueUnavailable(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{}, &stubLimiter{})

	w, _ := doJSON(t, r, http.MethodPost, "/conversations/"+uuid.NewString()+"/messages/async",
		`{"message": "hello"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a job queue, got %d", w.Code)
	}
}

func TestPostMessage_InvalidJSON(t *testing.T) {
	r, _ := newTestRouter(t, &stubProvider{}, &stubLimiter{})

	w, _ := doJSON(t, r, http.MethodPost, "/conversations/"+uuid.NewString()+"/messages", `{`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
