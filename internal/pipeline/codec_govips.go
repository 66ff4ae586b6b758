//go:build govips && cgo

package pipeline

import (
	"context"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/dunamismax/pixelgate/internal/failure"
	"github.com/dunamismax/pixelgate/internal/format"
)

type govipsCodec struct{}

func (govipsCodec) Probe(ctx context.Context, data []byte) (Metadata, error) {
	if err := checkContext(ctx); err != nil {
		return Metadata{}, err
	}

	params := vips.NewImportParams()
	params.NumPages.Set(-1)
	img, err := vips.LoadImageFromBuffer(data, params)
	if err != nil {
		return Metadata{}, failure.New(failure.KindUnsupportedInputFormat, "probe image", err)
	}
	defer img.Close()

	pages := img.Pages()
	if pages < 1 {
		pages = 1
	}
	return Metadata{
		Format: formatFromImageType(img.Format()),
		Width:  img.Width(),
		Height: img.PageHeight(),
		Pages:  pages,
	}, nil
}

func (govipsCodec) Crop(ctx context.Context, data []byte, r Rect) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	img, err := loadGovipsImage(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	if !r.within(img.Width(), img.Height()) {
		return nil, fmt.Errorf("crop area %dx%d+%d+%d outside %dx%d image", r.Width, r.Height, r.Left, r.Top, img.Width(), img.Height())
	}
	if err := img.ExtractArea(r.Left, r.Top, r.Width, r.Height); err != nil {
		return nil, fmt.Errorf("extract area: %w", err)
	}
	return exportIntermediate(img)
}

func (govipsCodec) Resize(ctx context.Context, data []byte, width, height int, fit Fit) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if fit != FitCover {
		return nil, fmt.Errorf("unsupported fit mode: %d", fit)
	}

	img, err := loadGovipsImage(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	boxW, boxH := coverBox(img.Width(), img.Height(), width, height)
	if boxW == img.Width() && boxH == img.Height() {
		return data, nil
	}
	if err := img.Thumbnail(boxW, boxH, vips.InterestingCentre); err != nil {
		return nil, fmt.Errorf("resize image: %w", err)
	}
	return exportIntermediate(img)
}

func (govipsCodec) CanEncode(f format.Format) bool {
	return f.Encodable()
}

func (govipsCodec) Encode(ctx context.Context, data []byte, f format.Format, quality int) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if !f.Encodable() {
		return nil, failure.New(failure.KindUnsupportedOutputFormat, "encode", fmt.Errorf("format %s", f))
	}

	img, err := loadGovipsImage(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	switch f {
	case format.JPEG:
		params := vips.NewJpegExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		out, _, err := img.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return out, nil
	case format.PNG:
		out, _, err := img.ExportPng(vips.NewPngExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return out, nil
	case format.WebP:
		params := vips.NewWebpExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		out, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return out, nil
	default:
		params := vips.NewAvifExportParams()
		if quality > 0 && quality <= 100 {
			params.Quality = quality
		}
		out, _, err := img.ExportAvif(params)
		if err != nil {
			return nil, fmt.Errorf("encode avif: %w", err)
		}
		return out, nil
	}
}

func loadGovipsImage(data []byte) (*vips.ImageRef, error) {
	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, failure.New(failure.KindUnsupportedInputFormat, "decode source image", err)
	}
	return img, nil
}

func exportIntermediate(img *vips.ImageRef) ([]byte, error) {
	params := vips.NewPngExportParams()
	params.Compression = 1
	out, _, err := img.ExportPng(params)
	if err != nil {
		return nil, fmt.Errorf("encode intermediate: %w", err)
	}
	return out, nil
}

func formatFromImageType(t vips.ImageType) format.Format {
	switch t {
	case vips.ImageTypeJPEG:
		return format.JPEG
	case vips.ImageTypePNG:
		return format.PNG
	case vips.ImageTypeWEBP:
		return format.WebP
	case vips.ImageTypeAVIF:
		return format.AVIF
	case vips.ImageTypeGIF:
		return format.GIF
	default:
		return format.Unknown
	}
}
