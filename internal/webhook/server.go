// Package webhook receives trade signals over HTTP and hands them to the
// dispatcher. The sender always gets the same acknowledgement; trading
// outcomes are never reported back.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/types"
)

const defaultMaxBody = 64 << 10

type Options struct {
	Addr string
	Path string
	// Async acknowledges before the signal is evaluated.
	Async        bool
	MaxBodyBytes int64
}

// payload accepts both the TradingView "ticker" field and "symbol".
type payload struct {
	Ticker string `json:"ticker"`
	Symbol string `json:"symbol"`
	Action string `json:"action"`
}

func (p payload) symbol() string {
	if p.Ticker != "" {
		return p.Ticker
	}
	return p.Symbol
}

type Server struct {
	dispatcher interfaces.Dispatcher
	opts       Options
	srv        *http.Server

	// in-flight async evaluations
	inflight sync.WaitGroup
}

func New(d interfaces.Dispatcher, opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/webhook"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	s := &Server{dispatcher: d, opts: opts}
	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.Path, s.handleSignal)
	return mux
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	ctx := r.Context()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		logger.Warn(ctx, "Webhook body rejected", "error", err, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	// content type is not checked; senders like TradingView post text/plain
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		logger.Warn(ctx, "Webhook payload is not JSON", "error", err, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	logger.Info(ctx, "Webhook received", "ticker", p.symbol(), "action", p.Action)

	if s.opts.Async {
		s.inflight.Add(1)
		go func(ctx context.Context) {
			defer s.inflight.Done()
			s.dispatcher.Dispatch(ctx, p.symbol(), p.Action)
		}(context.WithoutCancel(ctx))
	} else {
		s.dispatcher.Dispatch(ctx, p.symbol(), p.Action)
	}

	writeJSON(w, http.StatusOK, types.Processed)
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	logger.Info(context.Background(), "Webhook listener starting", "addr", s.opts.Addr, "path", s.opts.Path, "async", s.opts.Async)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting signals and waits for in-flight evaluations to
// finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
