package format

import (
	"path"
	"strings"
)

// Format is the closed set of media formats the handler distinguishes.
type Format int

const (
	Unknown Format = iota
	JPEG
	PNG
	WebP
	AVIF
	GIF
	MP3
)

func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case WebP:
		return "webp"
	case AVIF:
		return "avif"
	case GIF:
		return "gif"
	case MP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Encodable reports whether f is a valid output target. GIF is never one.
func (f Format) Encodable() bool {
	switch f {
	case JPEG, PNG, WebP, AVIF:
		return true
	default:
		return false
	}
}

// Processable reports whether a source in format f can go through the codec.
func (f Format) Processable() bool {
	return f.Encodable() || f == GIF
}

// Lossy reports whether the encoder for f takes a quality parameter.
func (f Format) Lossy() bool {
	switch f {
	case JPEG, WebP, AVIF:
		return true
	default:
		return false
	}
}

// ContentType is total: anything without a mapping is served as image/webp.
func (f Format) ContentType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	case WebP:
		return "image/webp"
	case AVIF:
		return "image/avif"
	case GIF:
		return "image/gif"
	case MP3:
		return "audio/mpeg"
	default:
		return "image/webp"
	}
}

// ParseOutput maps a requested token onto an output format. The second
// return is false when the token is not in the alias table.
func ParseOutput(token string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "jpg", "jpeg":
		return JPEG, true
	case "png":
		return PNG, true
	case "webp":
		return WebP, true
	case "avif":
		return AVIF, true
	default:
		return Unknown, false
	}
}

// ResolveOutput returns the output format for token, or fallback when the
// token is unrecognized.
func ResolveOutput(token string, fallback Format) Format {
	if f, ok := ParseOutput(token); ok {
		return f
	}
	return fallback
}

// IsGIFToken reports whether the caller explicitly asked for gif output.
func IsGIFToken(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), "gif")
}

// SourceClass splits source objects into codec-processable images and
// everything else.
type SourceClass int

const (
	ClassPassthrough SourceClass = iota
	ClassImage
)

func (c SourceClass) String() string {
	if c == ClassImage {
		return "image"
	}
	return "passthrough"
}

// ClassifySource derives the source format and class from the key's
// trailing extension.
func ClassifySource(objectKey string) (Format, SourceClass) {
	f := fromExtension(Extension(objectKey))
	if f.Processable() {
		return f, ClassImage
	}
	return f, ClassPassthrough
}

// Extension returns the lower-cased trailing extension of key without the dot.
func Extension(key string) string {
	ext := path.Ext(key)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func fromExtension(ext string) Format {
	switch ext {
	case "jpg", "jpeg":
		return JPEG
	case "png":
		return PNG
	case "webp":
		return WebP
	case "avif":
		return AVIF
	case "gif":
		return GIF
	case "mp3":
		return MP3
	default:
		return Unknown
	}
}
