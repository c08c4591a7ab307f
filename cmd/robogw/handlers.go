package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	robotgateway "github.com/robotalk-labs/robot-gateway"
	"github.com/robotalk-labs/robot-gateway/internal/chatlog"
	"github.com/robotalk-labs/robot-gateway/internal/logging"
	"github.com/robotalk-labs/robot-gateway/internal/personality"
	"github.com/robotalk-labs/robot-gateway/internal/ratelimit"
	"github.com/robotalk-labs/robot-gateway/internal/schema"
	"github.com/robotalk-labs/robot-gateway/internal/tts"
	"github.com/robotalk-labs/robot-gateway/web"
)

// maxBodyBytes caps request bodies well above the schema limits so oversized
// payloads are cut off before JSON parsing.
const maxBodyBytes = 64 << 10

// historyLister reads back recorded conversation turns. Only the SQL chat
// log implements it; with persistence off the history endpoint returns 404.
type historyLister interface {
	List(ctx context.Context, q chatlog.Query) (*chatlog.Result, error)
}

// newRouter builds the HTTP API around svc.
func newRouter(svc *robotgateway.Service, store *ratelimit.Store, history historyLister, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware)
	r.Use(corsMiddleware(corsOrigins...))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"providers": svc.Providers(),
			"circuits":  svc.ProviderHealth(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", serveIndex)

	r.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.Middleware(store))

		r.Post("/chat", handleChat(svc))
		r.Get("/greeting/{personality}", handleGreeting(svc))
		r.Post("/voice/tts", handleSpeak(svc))
		r.Get("/personalities", handlePersonalities)
		r.Get("/cache/stats", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, svc.CacheStats())
		})
		r.Delete("/cache", func(w http.ResponseWriter, _ *http.Request) {
			svc.ClearCaches()
			writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
		})
		r.Get("/history", handleHistory(history))
	})

	return r
}

func handleChat(svc *robotgateway.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := schema.ValidateChat(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req robotgateway.ChatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := svc.Chat(r.Context(), req)
		if err != nil {
			if errors.Is(err, robotgateway.ErrUnknownPersonality) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logging.FromContext(r.Context()).Error("chat failed", "error", err)
			writeError(w, http.StatusInternalServerError, "something went wrong, try again")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleGreeting(svc *robotgateway.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "personality")
		greeting, err := svc.Greeting(name)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"personality": name,
			"greeting":    greeting,
		})
	}
}

func handleSpeak(svc *robotgateway.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := schema.ValidateSpeech(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req struct {
			Text        string `json:"text"`
			Personality string `json:"personality"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		audio, err := svc.Speak(r.Context(), req.Text, req.Personality)
		if err != nil {
			switch {
			case errors.Is(err, tts.ErrNoSynthesizer):
				writeError(w, http.StatusServiceUnavailable, "voice is not configured")
			case errors.Is(err, robotgateway.ErrUnknownPersonality):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				logging.FromContext(r.Context()).Error("tts failed", "error", err)
				writeError(w, http.StatusBadGateway, "speech synthesis failed")
			}
			return
		}

		w.Header().Set("Content-Type", audio.MIME)
		w.Header().Set("X-Voice-Vendor", audio.Vendor)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(audio.Data)
	}
}

func handlePersonalities(w http.ResponseWriter, _ *http.Request) {
	type info struct {
		Name   string   `json:"name"`
		Emoji  string   `json:"emoji"`
		Traits []string `json:"traits"`
	}
	names := personality.Names()
	out := make([]info, 0, len(names))
	for _, name := range names {
		p, _ := personality.Get(name)
		out = append(out, info{Name: p.Name, Emoji: p.Emoji, Traits: p.Traits})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"default":       personality.DefaultName,
		"personalities": out,
	})
}

func handleHistory(history historyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			writeError(w, http.StatusNotFound, "conversation history is not enabled")
			return
		}
		q := chatlog.Query{Personality: r.URL.Query().Get("personality")}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			q.Limit = n
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
				return
			}
			q.Offset = n
		}

		result, err := history.List(r.Context(), q)
		if err != nil {
			logging.FromContext(r.Context()).Error("history query failed", "error", err)
			writeError(w, http.StatusInternalServerError, "history query failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// serveIndex serves the embedded demo chat page.
func serveIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := web.Assets.ReadFile("index.html")
	if err != nil {
		http.Error(w, "demo page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
