package domain

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dunamismax/pixelgate/internal/failure"
	"github.com/dunamismax/pixelgate/internal/format"
)

const (
	ParamResize  = "resize"
	ParamCrop    = "crop"
	ParamFormat  = "format"
	ParamQuality = "quality"

	DefaultQuality = 85
)

// Query holds the raw, single-valued query parameters of an inbound request.
type Query map[string]string

// Lookup returns the raw value for name and whether it was supplied. An
// empty value counts as not supplied.
func (q Query) Lookup(name string) (string, bool) {
	v, ok := q[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Defaults are the configured fallbacks applied while parsing directives.
type Defaults struct {
	Format  format.Format
	Quality int
}

type Resize struct {
	Width  *int
	Height *int
}

// Requested reports whether either axis is constrained.
func (r Resize) Requested() bool {
	return r.Width != nil || r.Height != nil
}

type Crop struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Presence records which directives were supplied as raw query parameters,
// regardless of whether they parsed to anything meaningful.
type Presence struct {
	Resize  bool
	Crop    bool
	Format  bool
	Quality bool
}

func (p Presence) Any() bool {
	return p.Resize || p.Crop || p.Format || p.Quality
}

type TransformRequest struct {
	ObjectKey   string
	Resize      Resize
	Crop        *Crop
	Format      format.Format
	FormatToken string
	Quality     int
	Present     Presence
}

// WantsGIF reports whether the caller explicitly asked for gif output.
func (r TransformRequest) WantsGIF() bool {
	return r.Present.Format && format.IsGIFToken(r.FormatToken)
}

// Validate rejects requests that must fail before the source is fetched.
func (r TransformRequest) Validate(limits Limits) error {
	if strings.TrimSpace(r.ObjectKey) == "" {
		return failure.New(failure.KindMissingObjectKey, "validate request", nil)
	}
	return limits.Check(r.Resize)
}

// ParseDirectives turns raw query parameters into a TransformRequest. It
// never fails: malformed directives degrade to absent.
func ParseDirectives(objectKey string, q Query, d Defaults) TransformRequest {
	d = d.normalized()

	req := TransformRequest{
		ObjectKey: objectKey,
		Format:    d.Format,
		Quality:   d.Quality,
	}

	if raw, ok := q.Lookup(ParamResize); ok {
		req.Present.Resize = true
		req.Resize = ParseResize(raw)
	}
	if raw, ok := q.Lookup(ParamCrop); ok {
		req.Present.Crop = true
		req.Crop = ParseCrop(raw)
	}
	if raw, ok := q.Lookup(ParamFormat); ok {
		req.Present.Format = true
		req.FormatToken = raw
		req.Format = format.ResolveOutput(raw, d.Format)
	}
	if raw, ok := q.Lookup(ParamQuality); ok {
		req.Present.Quality = true
		req.Quality = ParseQuality(raw, d.Quality)
	}

	return req
}

var resizePattern = regexp.MustCompile(`^(\d+)?x(\d+)?$`)

// ParseResize reads "<W>?x<H>?". Anything else, and any zero axis, is
// unconstrained.
func ParseResize(raw string) Resize {
	m := resizePattern.FindStringSubmatch(raw)
	if m == nil {
		return Resize{}
	}
	return Resize{
		Width:  positiveOrNil(m[1]),
		Height: positiveOrNil(m[2]),
	}
}

// ParseCrop reads "left,top,width,height". The whole directive is dropped
// unless all four fields are non-negative integers.
func ParseCrop(raw string) *Crop {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil
	}

	var values [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil
		}
		values[i] = n
	}

	return &Crop{Left: values[0], Top: values[1], Width: values[2], Height: values[3]}
}

// ParseQuality returns the integer quality in raw, or fallback when raw is
// not an integer in 1..100.
func ParseQuality(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 100 {
		return fallback
	}
	return n
}

func (d Defaults) normalized() Defaults {
	if !d.Format.Encodable() {
		d.Format = format.WebP
	}
	if d.Quality < 1 || d.Quality > 100 {
		d.Quality = DefaultQuality
	}
	return d
}

func positiveOrNil(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		// Out of int range still has to trip the limit check.
		n, err = math.MaxInt, nil
	}
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
