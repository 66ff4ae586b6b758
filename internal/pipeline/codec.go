package pipeline

import (
	"context"
	"errors"
	"math"

	"github.com/dunamismax/pixelgate/internal/format"
)

var ErrCodecUnavailable = errors.New("encoder unavailable in this build")

// Fit selects how Resize maps the source onto the target box.
type Fit int

const (
	// FitCover fills the box exactly, cropping centred overflow.
	FitCover Fit = iota
)

type Metadata struct {
	Format format.Format
	Width  int
	Height int
	Pages  int
}

func (m Metadata) Animated() bool {
	return m.Pages > 1
}

type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Codec performs the pixel work. Every operation takes and returns encoded
// bytes; intermediate results are lossless.
type Codec interface {
	Probe(ctx context.Context, data []byte) (Metadata, error)
	Crop(ctx context.Context, data []byte, r Rect) ([]byte, error)
	// Resize never enlarges. A zero width or height follows the source
	// aspect ratio.
	Resize(ctx context.Context, data []byte, width, height int, fit Fit) ([]byte, error)
	// Encode ignores quality for lossless formats.
	Encode(ctx context.Context, data []byte, f format.Format, quality int) ([]byte, error)
	CanEncode(f format.Format) bool
}

// coverBox computes the final size of a fit-cover resize without
// enlargement. Each axis of the box is clamped to the source.
func coverBox(srcW, srcH, width, height int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}

	switch {
	case width <= 0 && height <= 0:
		return srcW, srcH
	case width <= 0:
		width = int(math.Round(float64(srcW) * float64(height) / float64(srcH)))
	case height <= 0:
		height = int(math.Round(float64(srcH) * float64(width) / float64(srcW)))
	}

	return clamp(width, 1, srcW), clamp(height, 1, srcH)
}

// within compares by subtraction so huge offsets cannot wrap around.
func (r Rect) within(w, h int) bool {
	if r.Width <= 0 || r.Height <= 0 || r.Left < 0 || r.Top < 0 {
		return false
	}
	if r.Left >= w || r.Top >= h {
		return false
	}
	return r.Width <= w-r.Left && r.Height <= h-r.Top
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
