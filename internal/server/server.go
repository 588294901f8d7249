// Package server exposes the parser over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/parser"
)

const maxBodyBytes = 1 << 20

// ParseRequest is the POST /v1/parse body.
type ParseRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Date    string `json:"date"` // RFC 3339
}

// TransactionResponse is the JSON form of a parsed transaction.
type TransactionResponse struct {
	Amount   string `json:"amount"`
	Merchant string `json:"merchant"`
	Date     string `json:"date"`
	Bank     string `json:"bank"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

// NewTransactionResponse renders txn with a two-decimal amount and an RFC 3339 date.
func NewTransactionResponse(txn *model.ParsedTransaction) TransactionResponse {
	return TransactionResponse{
		Amount:   txn.Amount.StringFixed(2),
		Merchant: txn.Merchant,
		Date:     txn.Date.Format(time.RFC3339),
		Bank:     string(txn.Bank),
		Type:     string(txn.Type),
		Currency: txn.Currency,
	}
}

// NewRouter builds the HTTP routes. A nil logger discards request logs.
func NewRouter(p *parser.Parser, logger *log.Logger) *chi.Mux {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("http")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/parse", parseHandler(p, logger))
	})

	return r
}

func parseHandler(p *parser.Parser, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ParseRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			logger.Warn("invalid parse request", "err", err)
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Date == "" {
			writeError(w, http.StatusBadRequest, "date is required")
			return
		}
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be RFC 3339")
			return
		}

		txn := p.Parse(req.Subject, req.Body, date)
		if txn == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, NewTransactionResponse(txn))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// ListenAndServe serves h on addr until ctx is canceled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
