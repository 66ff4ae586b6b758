package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/dunamismax/pixelgate/internal/failure"
)

func statusError(code int) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: code}},
			Err:      errors.New("response error"),
		},
		RequestID: "req-1",
	}
}

func operationError(err error) error {
	return &smithy.OperationError{ServiceID: "S3", OperationName: "GetObject", Err: err}
}

func TestIsNotFound_Shapes(t *testing.T) {
	cases := map[string]error{
		"named type":       operationError(&types.NoSuchKey{Message: aws.String("gone")}),
		"head not found":   &types.NotFound{},
		"error code":       &smithy.GenericAPIError{Code: "NoSuchKey"},
		"http status":      operationError(statusError(http.StatusNotFound)),
		"minio code":       minio.ErrorResponse{Code: "NoSuchKey"},
		"minio status":     fmt.Errorf("stat: %w", minio.ErrorResponse{StatusCode: http.StatusNotFound}),
		"sentinel":         fmt.Errorf("read: %w", ErrNotFound),
		"message fallback": errors.New("upstream said: Not Found"),
		"message nosuch":   errors.New("nosuchkey for path a/b.jpg"),
	}
	for name, err := range cases {
		assert.True(t, IsNotFound(err), name)
	}
}

func TestIsNotFound_OtherFailures(t *testing.T) {
	cases := map[string]error{
		"nil":           nil,
		"access denied": &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"},
		"forbidden":     operationError(statusError(http.StatusForbidden)),
		"minio slow":    minio.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable},
		"plain":         errors.New("connection reset by peer"),
	}
	for name, err := range cases {
		assert.False(t, IsNotFound(err), name)
	}
}

func TestClassifyFetchError(t *testing.T) {
	err := classifyFetchError("a.jpg", operationError(statusError(http.StatusNotFound)))
	assert.Equal(t, failure.KindObjectNotFound, failure.KindOf(err))
	assert.Equal(t, http.StatusNotFound, failure.Classify(err).Status)

	err = classifyFetchError("a.jpg", errors.New("dial tcp: timeout"))
	assert.Equal(t, failure.KindInternal, failure.KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, failure.Classify(err).Status)
}
