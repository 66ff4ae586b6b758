package domain

import "github.com/dunamismax/pixelgate/internal/failure"

const DefaultMaxDimension = 3000

// Limits bounds the resize box a caller may request.
type Limits struct {
	MaxWidth  int
	MaxHeight int
}

func (l Limits) normalized() Limits {
	if l.MaxWidth <= 0 {
		l.MaxWidth = DefaultMaxDimension
	}
	if l.MaxHeight <= 0 {
		l.MaxHeight = DefaultMaxDimension
	}
	return l
}

// WithinLimits reports whether both axes fit. A nil axis is unconstrained
// and always fits.
func (l Limits) WithinLimits(width, height *int) bool {
	l = l.normalized()
	if width != nil && *width > l.MaxWidth {
		return false
	}
	if height != nil && *height > l.MaxHeight {
		return false
	}
	return true
}

// Check returns a DimensionExceeded failure when r is over the limits.
func (l Limits) Check(r Resize) error {
	if l.WithinLimits(r.Width, r.Height) {
		return nil
	}
	l = l.normalized()
	return failure.DimensionExceeded(l.MaxWidth, l.MaxHeight)
}
