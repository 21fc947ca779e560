package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/config"
	"codecrafter-quiz/internal/domain"
	"codecrafter-quiz/internal/infra/memory"
	"codecrafter-quiz/internal/view"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// stalledRepository never answers until the caller gives up.
type stalledRepository struct{}

func (stalledRepository) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledRepository) GetQuiz(ctx context.Context, _ string) (domain.Quiz, error) {
	<-ctx.Done()
	return domain.Quiz{}, ctx.Err()
}

func TestPlayHandlerHonoursCatalogTimeout(t *testing.T) {
	var cfg config.Config
	cfg.Catalog.Timeout = "50ms"

	handler := newPlayHandler(cfg, stalledRepository{}, memory.NewSessionStore(), nil, nil, zerolog.Nop())
	mux := http.NewServeMux()
	handler.Register(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws/play", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// the runtime default is 10s; the configured 50ms must fail well inside 2s
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("catalog failure not reported before deadline: %v", err)
		}
		if msg.Type != "state" {
			continue
		}
		var v view.View
		if err := json.Unmarshal(msg.Payload, &v); err != nil {
			t.Fatalf("decode view: %v", err)
		}
		if v.Notice == app.NoticeCatalogFailed {
			return
		}
	}
}

func TestRuntimeOptionsApplyCatalogTimeout(t *testing.T) {
	var cfg config.Config
	cfg.Catalog.Timeout = "50ms"

	rt := app.NewRuntime("cli", stalledRepository{}, nil, runtimeOptions(cfg, zerolog.Nop())...)
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		<-rt.Done()
	}()
	go func() { _ = rt.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for rt.Snapshot().Notice != app.NoticeCatalogFailed {
		if time.Now().After(deadline) {
			t.Fatalf("catalog timeout not applied, notice=%q", rt.Snapshot().Notice)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
