package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dunamismax/pixelgate/internal/domain"
	"github.com/dunamismax/pixelgate/internal/failure"
	"github.com/dunamismax/pixelgate/internal/format"
	"github.com/dunamismax/pixelgate/internal/storage"
)

// Decision names the path a request took through the processor.
type Decision string

const (
	DecisionPassthroughNonImage Decision = "passthrough_non_image"
	DecisionPassthroughOriginal Decision = "passthrough_original"
	DecisionTransformed         Decision = "transformed"
)

type Result struct {
	Body        []byte
	ContentType string
	Decision    Decision
	SourceBytes int
}

type Fetcher interface {
	Fetch(ctx context.Context, key string) (storage.Object, error)
}

type Processor struct {
	fetcher Fetcher
	codec   Codec
	limits  domain.Limits
	log     zerolog.Logger
	tracer  trace.Tracer
}

// NewProcessor builds a processor around the codec compiled into this
// binary.
func NewProcessor(fetcher Fetcher, limits domain.Limits, logger zerolog.Logger) (*Processor, error) {
	codec, err := newCodec()
	if err != nil {
		return nil, fmt.Errorf("build codec: %w", err)
	}
	return NewProcessorWithCodec(fetcher, codec, limits, logger), nil
}

func NewProcessorWithCodec(fetcher Fetcher, codec Codec, limits domain.Limits, logger zerolog.Logger) *Processor {
	return &Processor{
		fetcher: fetcher,
		codec:   codec,
		limits:  limits,
		log:     logger.With().Str("component", "pipeline").Logger(),
		tracer:  otel.Tracer("pixelgate/pipeline"),
	}
}

// CheckDefaults fails when the codec compiled into this binary cannot
// encode the default output format.
func (p *Processor) CheckDefaults(d domain.Defaults) error {
	if !p.codec.CanEncode(d.Format) {
		return fmt.Errorf("default output format %s: %w", d.Format, ErrCodecUnavailable)
	}
	return nil
}

// Process validates req, fetches its source and either passes it through
// or transforms it. Failures carry a failure.Kind.
func (p *Processor) Process(ctx context.Context, req domain.TransformRequest) (Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.process")
	defer span.End()
	span.SetAttributes(attribute.String("object.key", req.ObjectKey))

	res, err := p.process(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, failure.KindOf(err).String())
		return Result{}, err
	}

	span.SetAttributes(
		attribute.String("pipeline.decision", string(res.Decision)),
		attribute.Int("pipeline.source_bytes", res.SourceBytes),
		attribute.Int("pipeline.output_bytes", len(res.Body)),
	)
	span.SetStatus(codes.Ok, string(res.Decision))
	return res, nil
}

func (p *Processor) process(ctx context.Context, req domain.TransformRequest) (Result, error) {
	// Limits are enforced before the fetch so oversized requests cost nothing.
	if err := req.Validate(p.limits); err != nil {
		return Result{}, err
	}

	log := p.log.With().Str("object_key", req.ObjectKey).Logger()

	obj, err := p.fetcher.Fetch(ctx, req.ObjectKey)
	if err != nil {
		return Result{}, fmt.Errorf("fetch stage: %w", err)
	}
	sourceFormat, class := format.ClassifySource(req.ObjectKey)
	log.Info().Int("bytes", len(obj.Body)).Stringer("class", class).Msg("fetched source object")

	if class != format.ClassImage {
		contentType := obj.ContentType
		if contentType == "" {
			contentType = format.InferContentType(req.ObjectKey)
		}
		return passthrough(obj.Body, contentType, DecisionPassthroughNonImage), nil
	}

	if !req.Present.Any() {
		log.Info().Msg("no transformation parameters, returning original")
		return passthrough(obj.Body, sourceFormat.ContentType(), DecisionPassthroughOriginal), nil
	}

	if req.WantsGIF() {
		return Result{}, failure.New(failure.KindUnsupportedOutputFormat, "guard", fmt.Errorf("gif output requested"))
	}

	if sourceFormat == format.GIF {
		meta, err := p.codec.Probe(ctx, obj.Body)
		if err != nil {
			return Result{}, fmt.Errorf("probe stage: %w", err)
		}
		if meta.Animated() {
			return Result{}, failure.New(failure.KindAnimatedSourceUnsupported, "guard", fmt.Errorf("%d frames", meta.Pages))
		}
	}

	out, err := p.transform(ctx, req, obj.Body)
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Str("format", req.Format.String()).
		Int("source_bytes", len(obj.Body)).
		Int("output_bytes", len(out)).
		Msg("transformed image")

	return Result{
		Body:        out,
		ContentType: req.Format.ContentType(),
		Decision:    DecisionTransformed,
		SourceBytes: len(obj.Body),
	}, nil
}

// transform crops, then resizes, then encodes. Crop coordinates always
// refer to the source image.
func (p *Processor) transform(ctx context.Context, req domain.TransformRequest, data []byte) ([]byte, error) {
	var err error

	if c := req.Crop; c != nil {
		data, err = p.codec.Crop(ctx, data, Rect{Left: c.Left, Top: c.Top, Width: c.Width, Height: c.Height})
		if err != nil {
			return nil, fmt.Errorf("crop stage: %w", err)
		}
	}

	if req.Resize.Requested() {
		data, err = p.codec.Resize(ctx, data, deref(req.Resize.Width), deref(req.Resize.Height), FitCover)
		if err != nil {
			return nil, fmt.Errorf("resize stage: %w", err)
		}
	}

	quality := 0
	if req.Format.Lossy() {
		quality = req.Quality
	}
	data, err = p.codec.Encode(ctx, data, req.Format, quality)
	if err != nil {
		return nil, fmt.Errorf("encode stage format=%s: %w", req.Format, err)
	}
	return data, nil
}

func passthrough(body []byte, contentType string, decision Decision) Result {
	return Result{
		Body:        body,
		ContentType: contentType,
		Decision:    decision,
		SourceBytes: len(body),
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
