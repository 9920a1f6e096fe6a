package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/secmon-lab/coffeechat/pkg/utils/safe"
)

// maxCallbackBody bounds webhook request bodies
const maxCallbackBody = 10 << 20

type Server struct {
	router     *chi.Mux
	uc         *usecase.UseCases
	mcpHandler http.Handler
}

type Options func(*Server)

// WithMCP mounts the streamable MCP handler at /mcp
func WithMCP(h http.Handler) Options {
	return func(s *Server) {
		s.mcpHandler = h
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Post("/signalhire/callback", signalHireCallbackHandler(uc.SignalHire))
	r.Route("/api", func(r chi.Router) {
		r.Get("/profile-info", profileInfoHandler(uc.SignalHire))
		r.Get("/callback-status/{requestId}", callbackStatusHandler(uc.SignalHire))
	})

	r.Route("/oauth/google", func(r chi.Router) {
		r.Get("/login", oauthLoginHandler(uc.OAuth))
		r.Get("/callback", oauthCallbackHandler(uc.OAuth))
	})

	if s.mcpHandler != nil {
		r.With(requireAgentID).Handle("/mcp", s.mcpHandler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
