package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunamismax/pixelgate/internal/failure"
	"github.com/dunamismax/pixelgate/internal/format"
)

func TestCoverBox(t *testing.T) {
	cases := []struct {
		name             string
		srcW, srcH, w, h int
		wantW, wantH     int
	}{
		{"both axes", 400, 200, 100, 100, 100, 100},
		{"width only keeps aspect", 400, 200, 100, 0, 100, 50},
		{"height only keeps aspect", 400, 200, 0, 50, 100, 50},
		{"no enlargement", 100, 100, 300, 300, 100, 100},
		{"partial enlargement clamps axis", 100, 100, 200, 50, 100, 50},
		{"unconstrained", 64, 32, 0, 0, 64, 32},
		{"tiny aspect rounds up to one", 1000, 1, 10, 0, 10, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := coverBox(tc.srcW, tc.srcH, tc.w, tc.h)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestStdlibCodec_Probe(t *testing.T) {
	codec := stdlibCodec{}
	ctx := context.Background()

	meta, err := codec.Probe(ctx, buildTestPNG(t, 30, 20))
	require.NoError(t, err)
	assert.Equal(t, Metadata{Format: format.PNG, Width: 30, Height: 20, Pages: 1}, meta)

	meta, err = codec.Probe(ctx, buildTestGIF(t, 6, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, format.GIF, meta.Format)
	assert.Equal(t, 4, meta.Pages)
	assert.True(t, meta.Animated())

	meta, err = codec.Probe(ctx, buildTestGIF(t, 6, 4, 1))
	require.NoError(t, err)
	assert.False(t, meta.Animated())

	meta, err = codec.Probe(ctx, buildQuadrantJPEG(t, 32))
	require.NoError(t, err)
	assert.Equal(t, format.JPEG, meta.Format)
}

func TestStdlibCodec_ProbeRejectsUnknownContent(t *testing.T) {
	_, err := stdlibCodec{}.Probe(context.Background(), []byte("hello, world"))
	assert.True(t, failure.Is(err, failure.KindUnsupportedInputFormat))
}

func TestStdlibCodec_Crop(t *testing.T) {
	out, err := stdlibCodec{}.Crop(context.Background(), buildTestPNG(t, 40, 30), Rect{Left: 5, Top: 5, Width: 20, Height: 10})
	require.NoError(t, err)

	img, _ := decodeBytes(t, out)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestStdlibCodec_CropRejectsBadArea(t *testing.T) {
	src := buildTestPNG(t, 40, 30)
	for _, r := range []Rect{
		{Left: 0, Top: 0, Width: 0, Height: 10},
		{Left: 30, Top: 0, Width: 20, Height: 10},
		{Left: 0, Top: 25, Width: 10, Height: 10},
		{Left: math.MaxInt, Top: 0, Width: 1, Height: 5},
		{Left: 5, Top: 0, Width: math.MaxInt, Height: 5},
		{Left: 0, Top: math.MaxInt - 2, Width: 5, Height: 10},
	} {
		_, err := stdlibCodec{}.Crop(context.Background(), src, r)
		assert.Error(t, err, "%+v", r)
	}
}

func TestStdlibCodec_ResizeCoversBox(t *testing.T) {
	out, err := stdlibCodec{}.Resize(context.Background(), buildTestPNG(t, 400, 200), 100, 100, FitCover)
	require.NoError(t, err)

	img, _ := decodeBytes(t, out)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestStdlibCodec_ResizeNeverEnlarges(t *testing.T) {
	src := buildTestPNG(t, 50, 40)
	out, err := stdlibCodec{}.Resize(context.Background(), src, 500, 400, FitCover)
	require.NoError(t, err)

	assert.Equal(t, src, out)
}

func TestStdlibCodec_Encode(t *testing.T) {
	src := buildTestPNG(t, 16, 16)
	codec := stdlibCodec{}

	out, err := codec.Encode(context.Background(), src, format.JPEG, 60)
	require.NoError(t, err)
	_, name := decodeBytes(t, out)
	assert.Equal(t, "jpeg", name)

	out, err = codec.Encode(context.Background(), src, format.PNG, 0)
	require.NoError(t, err)
	_, name = decodeBytes(t, out)
	assert.Equal(t, "png", name)
}

func TestStdlibCodec_EncodeRejectsGIF(t *testing.T) {
	_, err := stdlibCodec{}.Encode(context.Background(), buildTestPNG(t, 4, 4), format.GIF, 80)
	assert.True(t, failure.Is(err, failure.KindUnsupportedOutputFormat))
}

func TestStdlibCodec_CanEncode(t *testing.T) {
	codec := stdlibCodec{}
	assert.True(t, codec.CanEncode(format.JPEG))
	assert.True(t, codec.CanEncode(format.PNG))
	assert.False(t, codec.CanEncode(format.WebP))
	assert.False(t, codec.CanEncode(format.AVIF))
	assert.False(t, codec.CanEncode(format.GIF))
}

func TestStdlibCodec_EncodeWithoutNativeEncoder(t *testing.T) {
	for _, f := range []format.Format{format.WebP, format.AVIF} {
		_, err := stdlibCodec{}.Encode(context.Background(), buildTestPNG(t, 4, 4), f, 80)
		assert.True(t, errors.Is(err, ErrCodecUnavailable), f.String())
		assert.Equal(t, failure.KindInternal, failure.KindOf(err))
	}
}
