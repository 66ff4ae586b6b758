package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOutput(t *testing.T) {
	cases := map[string]Format{
		"jpg":   JPEG,
		"JPEG":  JPEG,
		"png":   PNG,
		"WebP":  WebP,
		"avif":  AVIF,
		" png ": PNG,
	}
	for token, want := range cases {
		assert.Equal(t, want, ResolveOutput(token, PNG), "token %q", token)
	}
}

func TestResolveOutput_FallsBackForUnknownTokens(t *testing.T) {
	for _, token := range []string{"", "gif", "GIF", "bmp", "tiff", "jpegx", "mp3"} {
		assert.Equal(t, AVIF, ResolveOutput(token, AVIF), "token %q", token)
		assert.Equal(t, WebP, ResolveOutput(token, WebP), "token %q", token)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", JPEG.ContentType())
	assert.Equal(t, "image/png", PNG.ContentType())
	assert.Equal(t, "image/webp", WebP.ContentType())
	assert.Equal(t, "image/avif", AVIF.ContentType())
	assert.Equal(t, "image/gif", GIF.ContentType())
	assert.Equal(t, "audio/mpeg", MP3.ContentType())
	assert.Equal(t, "image/webp", Unknown.ContentType())
}

func TestGIFIsNeverAnOutput(t *testing.T) {
	assert.False(t, GIF.Encodable())
	assert.True(t, GIF.Processable())
	assert.True(t, IsGIFToken("GiF"))
	assert.False(t, IsGIFToken("png"))
}

func TestClassifySource(t *testing.T) {
	cases := []struct {
		key    string
		format Format
		class  SourceClass
	}{
		{"photos/cat.JPG", JPEG, ClassImage},
		{"photos/cat.jpeg", JPEG, ClassImage},
		{"a/b.png", PNG, ClassImage},
		{"a/b.webp", WebP, ClassImage},
		{"a/b.avif", AVIF, ClassImage},
		{"anim.gif", GIF, ClassImage},
		{"song.mp3", MP3, ClassPassthrough},
		{"report.pdf", Unknown, ClassPassthrough},
		{"no-extension", Unknown, ClassPassthrough},
		{"dir.v2/file", Unknown, ClassPassthrough},
	}
	for _, tc := range cases {
		f, class := ClassifySource(tc.key)
		assert.Equal(t, tc.format, f, tc.key)
		assert.Equal(t, tc.class, class, tc.key)
	}
}

func TestInferContentType(t *testing.T) {
	cases := map[string]string{
		"doc.pdf":          "application/pdf",
		"DOC.PDF":          "application/pdf",
		"clip.mp4":         "video/mp4",
		"track.flac":       "audio/flac",
		"notes.md":         "text/markdown; charset=utf-8",
		"bundle.mjs":       "application/javascript; charset=utf-8",
		"archive.7z":       "application/x-7z-compressed",
		"font.woff2":       "font/woff2",
		"sheet.xlsx":       "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"vector.svg":       "image/svg+xml",
		"mystery.xyz":      DefaultContentType,
		"no-extension-key": DefaultContentType,
	}
	for key, want := range cases {
		assert.Equal(t, want, InferContentType(key), key)
	}
}

func TestSourceClassString(t *testing.T) {
	_, class := ClassifySource("photos/cat.JPG")
	assert.Equal(t, "image", class.String())

	_, class = ClassifySource("docs/report.pdf")
	assert.Equal(t, "passthrough", class.String())
}
