// Package devserver serves a domain.ListingRepository over the REST
// contract the rest client speaks. It exists for local development and
// tests; it can inject failures to exercise retries and fallbacks.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mmcdole/vizinho/internal/domain"
	"github.com/mmcdole/vizinho/internal/repository/rest"
)

// Options configures the server.
type Options struct {
	// Token, when set, is required as a bearer token on every request.
	Token string

	// FailRate is the fraction of requests answered with 503.
	FailRate float64

	Logger *slog.Logger

	// Rand overrides the failure draw; returns a value in [0, 1).
	Rand func() float64
}

// Moderator is implemented by repositories that can approve suggested
// condominiums.
type Moderator interface {
	Approve(id string) error
}

// Server exposes a repository over HTTP.
type Server struct {
	repo   domain.ListingRepository
	opts   Options
	logger *slog.Logger
	router chi.Router

	mu         sync.Mutex
	httpServer *http.Server
}

// New builds the router over repo.
func New(repo domain.ListingRepository, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	s := &Server{repo: repo, opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.authenticate)
	r.Use(s.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Get("/listings", s.handleSearch)
		r.Get("/listings/max-price", s.handleMaxPrice)
		r.Get("/states", s.handleStates)
		r.Get("/states/{id}/cities", s.handleCities)
		r.Get("/cities/{id}/condominiums", s.handleCondominiums)
		r.Post("/cities/{id}/condominiums", s.handleSuggest)
		r.Post("/condominiums/{id}/approve", s.handleApprove)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("dev server listening", "addr", addr, "fail_rate", s.opts.FailRate)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("dev server stopping")
	return srv.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(rest.HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(rest.HeaderRequestID, requestID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			ctx := domain.ContextWithUserID(r.Context(), r.Header.Get(rest.HeaderUserID))
			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", requestID)
		})
	}
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.opts.Token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.FailRate > 0 && s.opts.Rand() < s.opts.FailRate {
			writeError(w, http.StatusServiceUnavailable, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	listings, err := s.repo.Search(r.Context(), rest.DecodeQuery(r.URL.Query()))
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rest.ListingsResponse{Listings: rest.FromListings(listings)})
}

func (s *Server) handleMaxPrice(w http.ResponseWriter, r *http.Request) {
	price, err := s.repo.MaxObservedPrice(r.Context())
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rest.MaxPriceResponse{MaxPrice: price})
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	s.writeLocations(w)(s.repo.FetchStates(r.Context()))
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	s.writeLocations(w)(s.repo.FetchCitiesByState(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleCondominiums(w http.ResponseWriter, r *http.Request) {
	s.writeLocations(w)(s.repo.FetchCondominiumsByCity(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) writeLocations(w http.ResponseWriter) func([]domain.LocationOption, error) {
	return func(opts []domain.LocationOption, err error) {
		if err != nil {
			s.writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rest.LocationsResponse{Items: rest.FromLocations(opts)})
	}
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req rest.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	id, err := s.repo.SuggestCondominium(r.Context(), chi.URLParam(r, "id"), req.Name, req.Address)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rest.SuggestResponse{ID: id})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	mod, ok := s.repo.(Moderator)
	if !ok {
		writeError(w, http.StatusNotImplemented, "moderation not supported")
		return
	}
	id := chi.URLParam(r, "id")
	if err := mod.Approve(id); err != nil {
		s.writeRepoError(w, err)
		return
	}
	s.logger.Info("condominium approved", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrDuplicateCondominium):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("repository error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, rest.ErrorResponse{Error: msg})
}
