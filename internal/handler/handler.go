package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"
	"url-shortener/internal/model"
	"url-shortener/internal/service"

	"github.com/gorilla/mux"
)

// Shortener creates short links.
type Shortener interface {
	Shorten(ctx context.Context, target string) (*model.Link, error)
	ShortURL(code string) string
}

// Resolver serves redirects and stats.
type Resolver interface {
	ResolveAndRecord(ctx context.Context, code, utm string) (string, error)
	Stats(ctx context.Context, code string) (*model.Link, error)
}

type Handler struct {
	Shortener Shortener
	Resolver  Resolver
}

// Request and response bodies
type shortenRequest struct {
	TargetURL string `json:"target_url"`
}

type shortenResponse struct {
	ShortenedURL string `json:"shortened_url"`
	TargetURL    string `json:"target_url"`
}

type statsResponse struct {
	ShortURL    string `json:"short_url"`
	TargetURL   string `json:"target_url"`
	VisitsCount int64  `json:"visits_count"`
	CreatedAt   string `json:"created_at"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func NewHandler(s Shortener, r Resolver) *Handler {
	return &Handler{Shortener: s, Resolver: r}
}

func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/link/shorten", h.CreateShort).Methods("POST")
	r.HandleFunc("/api/v1/link/stats/{code}", h.Stats).Methods("GET")
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/{code}", h.Redirect).Methods("GET")

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			log.Println("request:", req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})

	return r
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) CreateShort(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.TargetURL == "" {
		writeDetail(w, http.StatusBadRequest, "target_url missing")
		return
	}

	link, err := h.Shortener.Shorten(r.Context(), req.TargetURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTarget):
			writeDetail(w, http.StatusBadRequest, "invalid target_url")
		default:
			// Includes ErrCodeExhausted and store errors; the caller only
			// ever sees a generic failure.
			log.Println("shorten failed:", err)
			writeDetail(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, shortenResponse{
		ShortenedURL: h.Shortener.ShortURL(link.Code),
		TargetURL:    link.Target,
	})
}

func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	target, err := h.Resolver.ResolveAndRecord(r.Context(), code, r.URL.RawQuery)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Link not found")
			return
		}
		log.Println("resolve failed:", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	link, err := h.Resolver.Stats(r.Context(), code)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Short URL not found")
			return
		}
		log.Println("stats failed:", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		ShortURL:    h.Shortener.ShortURL(link.Code),
		TargetURL:   link.Target,
		VisitsCount: link.VisitsCount,
		CreatedAt:   link.CreatedAt.Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}
