package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"signal-trading-bot/internal/types"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	calls [][2]string
	block chan struct{}
}

func (r *recordingDispatcher) Dispatch(_ context.Context, symbol, action string) *types.Outcome {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [2]string{symbol, action})
	return &types.Outcome{Status: types.OutcomeSkipped}
}

func (r *recordingDispatcher) snapshot() [][2]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]string(nil), r.calls...)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookDispatchesAndAcknowledges(t *testing.T) {
	d := &recordingDispatcher{}
	h := New(d, Options{}).Handler()

	for _, body := range []string{
		`{"ticker":"aapl","action":"buy"}`,
		`{"symbol":"MSFT","action":"SELL"}`,
		`{"ticker":"TSLA","action":"HOLD"}`,
		`{}`,
	} {
		rec := post(t, h, "/webhook", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("body %s: expected 200, got %d", body, rec.Code)
		}
		var ack types.Ack
		if err := json.Unmarshal(rec.Body.Bytes(), &ack); err != nil || ack.Status != "processed" {
			t.Errorf("body %s: expected processed ack, got %q", body, rec.Body.String())
		}
	}

	calls := d.snapshot()
	want := [][2]string{{"aapl", "buy"}, {"MSFT", "SELL"}, {"TSLA", "HOLD"}, {"", ""}}
	if len(calls) != len(want) {
		t.Fatalf("Expected %d dispatches, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("dispatch %d: expected %v, got %v", i, want[i], calls[i])
		}
	}
}

func TestWebhookRejectsBadRequests(t *testing.T) {
	d := &recordingDispatcher{}
	h := New(d, Options{Path: "/hook", MaxBodyBytes: 32}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/hook", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rec.Code)
	}

	if rec := post(t, h, "/hook", "not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", rec.Code)
	}
	if rec := post(t, h, "/hook", `{"ticker":"`+strings.Repeat("A", 64)+`"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized body, got %d", rec.Code)
	}
	if len(d.snapshot()) != 0 {
		t.Error("Expected no dispatch for rejected requests")
	}
}

func TestAsyncWebhookDrainsOnShutdown(t *testing.T) {
	d := &recordingDispatcher{block: make(chan struct{})}
	s := New(d, Options{Addr: "127.0.0.1:0", Async: true})

	rec := post(t, s.Handler(), "/webhook", `{"ticker":"AAPL","action":"BUY"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected immediate 200 in async mode, got %d", rec.Code)
	}
	if len(d.snapshot()) != 0 {
		t.Fatal("Dispatch should still be blocked")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	if err := s.Shutdown(ctx); err == nil {
		t.Error("Expected Shutdown to time out while a signal is in flight")
	}
	cancel()

	close(d.block)
	ctx, cancel = context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if len(d.snapshot()) != 1 {
		t.Errorf("Expected the in-flight signal to complete, got %v", d.snapshot())
	}
}
