package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dunamismax/pixelgate/internal/domain"
)

// Server exposes the Handler over plain HTTP for local and container
// deployments.
type Server struct {
	handler *Handler
	logger  zerolog.Logger
	tracer  trace.Tracer
	mux     *http.ServeMux
}

func NewServer(handler *Handler, logger zerolog.Logger) *Server {
	s := &Server{
		handler: handler,
		logger:  logger.With().Str("component", "http").Logger(),
		tracer:  otel.Tracer("pixelgate/api"),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.withTracing(s.handler.metrics.withHTTPMetrics(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.handler.metrics.metricsHandler())
	s.mux.HandleFunc("GET /{proxy...}", s.handleImage)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	resp := s.handler.Handle(r.Context(), Event{
		RequestID: r.Header.Get("X-Request-Id"),
		ObjectKey: r.PathValue("proxy"),
		Query:     firstValues(r),
	})

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		s.logger.Debug().Err(err).Msg("write response body")
	}
}

// firstValues keeps the first value of each query parameter, matching
// API Gateway's single-value map.
func firstValues(r *http.Request) domain.Query {
	values := r.URL.Query()
	q := make(domain.Query, len(values))
	for name, vs := range values {
		if len(vs) > 0 {
			q[name] = vs[0]
		}
	}
	return q
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
