package api

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dunamismax/pixelgate/internal/domain"
)

// LambdaFunc is the signature passed to lambda.Start.
type LambdaFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Flusher exports buffered telemetry before the execution environment
// freezes.
type Flusher interface {
	ForceFlush(ctx context.Context) error
}

// NewLambdaHandler adapts h to API Gateway proxy events. The object key is
// the "proxy" path parameter. Failures are always answered, never returned.
// flusher may be nil.
func NewLambdaHandler(h *Handler, flusher Flusher) LambdaFunc {
	tracer := otel.Tracer("pixelgate/api")

	invoke := func(ctx context.Context, req events.APIGatewayProxyRequest) Response {
		ctx, span := tracer.Start(ctx, "lambda.invoke", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		ev := Event{
			RequestID: req.RequestContext.RequestID,
			ObjectKey: req.PathParameters["proxy"],
			Query:     domain.Query(req.QueryStringParameters),
		}
		resp := h.Handle(ctx, ev)
		span.SetAttributes(
			attribute.String("object.key", ev.ObjectKey),
			attribute.Int("http.status_code", resp.StatusCode),
		)
		return resp
	}

	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp := invoke(ctx, req)
		if flusher != nil {
			if err := flusher.ForceFlush(ctx); err != nil {
				h.log.Warn().Err(err).Msg("flush traces")
			}
		}
		return toProxyResponse(resp), nil
	}
}

func toProxyResponse(resp Response) events.APIGatewayProxyResponse {
	out := events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
	}
	if resp.Binary {
		out.Body = base64.StdEncoding.EncodeToString(resp.Body)
		out.IsBase64Encoded = true
	} else {
		out.Body = string(resp.Body)
	}
	return out
}
