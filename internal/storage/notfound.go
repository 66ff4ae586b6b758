package storage

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"

	"github.com/dunamismax/pixelgate/internal/failure"
)

var notFoundMessage = regexp.MustCompile(`(?i)NoSuchKey|Not ?Found`)

// IsNotFound recognizes a missing-object failure from any backend. The
// store SDKs do not agree on one error shape, so every known shape is
// checked: named error types, error codes, HTTP status and finally the
// message text.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) && isNotFoundCode(coded.ErrorCode()) {
		return true
	}

	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		if isNotFoundCode(minioErr.Code) || minioErr.StatusCode == http.StatusNotFound {
			return true
		}
	}

	return notFoundMessage.MatchString(err.Error())
}

func isNotFoundCode(code string) bool {
	switch code {
	case "NoSuchKey", "NoSuchObject", "NotFound":
		return true
	default:
		return false
	}
}

// classifyFetchError tags a backend failure so the error classifier only
// has to look at kinds.
func classifyFetchError(key string, err error) error {
	if IsNotFound(err) {
		return failure.New(failure.KindObjectNotFound, "fetch "+key, err)
	}
	return failure.New(failure.KindInternal, "fetch "+key, err)
}
