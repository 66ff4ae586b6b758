package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dunamismax/pixelgate/internal/domain"
	"github.com/dunamismax/pixelgate/internal/failure"
	"github.com/dunamismax/pixelgate/internal/id"
	"github.com/dunamismax/pixelgate/internal/pipeline"
)

const cacheControlImmutable = "public, max-age=31536000, immutable"

// Event is a transport-neutral image request.
type Event struct {
	RequestID string
	ObjectKey string
	Query     domain.Query
}

// Response is a transport-neutral reply. Binary is set for object bytes
// and cleared for JSON error bodies.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Binary     bool
}

type imageProcessor interface {
	Process(ctx context.Context, req domain.TransformRequest) (pipeline.Result, error)
}

// Handler turns an Event into a Response. It is shared by the Lambda
// adapter and the HTTP server.
type Handler struct {
	processor imageProcessor
	defaults  domain.Defaults
	log       zerolog.Logger
	metrics   *metrics
}

func NewHandler(processor imageProcessor, defaults domain.Defaults, logger zerolog.Logger) *Handler {
	return &Handler{
		processor: processor,
		defaults:  defaults,
		log:       logger.With().Str("component", "api").Logger(),
		metrics:   newMetrics(),
	}
}

func (h *Handler) Handle(ctx context.Context, ev Event) Response {
	requestID := ev.RequestID
	if requestID == "" {
		requestID = id.New()
	}
	log := h.log.With().Str("request_id", requestID).Str("object_key", ev.ObjectKey).Logger()

	req := domain.ParseDirectives(ev.ObjectKey, ev.Query, h.defaults)
	log.Info().
		Interface("query", ev.Query).
		Bool("resize", req.Present.Resize).
		Bool("crop", req.Present.Crop).
		Str("format", req.Format.String()).
		Int("quality", req.Quality).
		Msg("image request")

	res, err := h.processor.Process(ctx, req)
	if err != nil {
		problem := failure.Classify(err)
		h.metrics.observeOutcome("error", problem.Kind.String())

		event := log.Warn()
		if problem.Status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(err).Str("kind", problem.Kind.String()).Int("status", problem.Status).Msg("image request failed")

		return errorResponse(problem)
	}

	h.metrics.observeOutcome(string(res.Decision), "")
	h.metrics.sourceBytes.Observe(float64(res.SourceBytes))
	log.Info().
		Str("decision", string(res.Decision)).
		Int("source_bytes", res.SourceBytes).
		Int("output_bytes", len(res.Body)).
		Msg("image request served")

	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":   res.ContentType,
			"Cache-Control":  cacheControlImmutable,
			"Content-Length": strconv.Itoa(len(res.Body)),
		},
		Body:   res.Body,
		Binary: true,
	}
}

func errorResponse(problem failure.Problem) Response {
	body, err := json.Marshal(problem.Body)
	if err != nil {
		body = []byte(`{"error":"Internal server error"}`)
	}
	return Response{
		StatusCode: problem.Status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
