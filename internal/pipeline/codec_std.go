package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/dunamismax/pixelgate/internal/failure"
	"github.com/dunamismax/pixelgate/internal/format"
)

// stdlibCodec is the pure-Go codec used when libvips is not compiled in.
// It decodes jpeg, png, gif and webp and encodes jpeg and png.
type stdlibCodec struct{}

func (stdlibCodec) Probe(ctx context.Context, data []byte) (Metadata, error) {
	if err := checkContext(ctx); err != nil {
		return Metadata{}, err
	}

	f, err := sniff(data)
	if err != nil {
		return Metadata{}, err
	}

	if f == format.GIF {
		anim, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return Metadata{}, failure.New(failure.KindUnsupportedInputFormat, "probe gif", err)
		}
		return Metadata{
			Format: f,
			Width:  anim.Config.Width,
			Height: anim.Config.Height,
			Pages:  len(anim.Image),
		}, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, failure.New(failure.KindUnsupportedInputFormat, "probe image", err)
	}
	return Metadata{Format: f, Width: cfg.Width, Height: cfg.Height, Pages: 1}, nil
}

func (stdlibCodec) Crop(ctx context.Context, data []byte, r Rect) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	src, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	if !r.within(b.Dx(), b.Dy()) {
		return nil, fmt.Errorf("crop area %dx%d+%d+%d outside %dx%d image", r.Width, r.Height, r.Left, r.Top, b.Dx(), b.Dy())
	}

	area := image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height).Add(b.Min)
	return encodeIntermediate(imaging.Crop(src, area))
}

func (stdlibCodec) Resize(ctx context.Context, data []byte, width, height int, fit Fit) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if fit != FitCover {
		return nil, fmt.Errorf("unsupported fit mode: %d", fit)
	}

	src, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	boxW, boxH := coverBox(b.Dx(), b.Dy(), width, height)
	if boxW == b.Dx() && boxH == b.Dy() {
		return data, nil
	}

	return encodeIntermediate(imaging.Fill(src, boxW, boxH, imaging.Center, imaging.Lanczos))
}

func (stdlibCodec) CanEncode(f format.Format) bool {
	return f == format.JPEG || f == format.PNG
}

func (stdlibCodec) Encode(ctx context.Context, data []byte, f format.Format, quality int) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if !f.Encodable() {
		return nil, failure.New(failure.KindUnsupportedOutputFormat, "encode", fmt.Errorf("format %s", f))
	}

	src, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch f {
	case format.JPEG:
		if quality <= 0 || quality > 100 {
			quality = 85
		}
		if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case format.PNG:
		if err := imaging.Encode(&buf, src, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("%s export requires govips build tag: %w", f, ErrCodecUnavailable)
	}

	return buf.Bytes(), nil
}

// sniff identifies the encoded format from content rather than trusting
// the object key.
func sniff(data []byte) (format.Format, error) {
	switch mimetype.Detect(data).String() {
	case "image/jpeg":
		return format.JPEG, nil
	case "image/png", "image/vnd.mozilla.apng":
		return format.PNG, nil
	case "image/gif":
		return format.GIF, nil
	case "image/webp":
		return format.WebP, nil
	case "image/avif":
		return format.AVIF, nil
	default:
		return format.Unknown, failure.New(failure.KindUnsupportedInputFormat, "sniff", fmt.Errorf("unrecognized content"))
	}
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, failure.New(failure.KindUnsupportedInputFormat, "decode source image", err)
	}
	return img, nil
}

func encodeIntermediate(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil, fmt.Errorf("encode intermediate: %w", err)
	}
	return buf.Bytes(), nil
}
