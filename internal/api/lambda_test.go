package api

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler_BinaryBodyIsBase64(t *testing.T) {
	src := testPNG(t, 20, 20)
	fn := NewLambdaHandler(newTestHandler(t, memoryStore{"icons/a.png": {Body: src}}), nil)

	out, err := fn(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: map[string]string{"proxy": "icons/a.png"},
		RequestContext: events.APIGatewayProxyRequestContext{RequestID: "req-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 200, out.StatusCode)
	assert.True(t, out.IsBase64Encoded)
	assert.Equal(t, "image/png", out.Headers["Content-Type"])

	decoded, err := base64.StdEncoding.DecodeString(out.Body)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestLambdaHandler_ErrorBodyIsPlainJSON(t *testing.T) {
	fn := NewLambdaHandler(newTestHandler(t, memoryStore{}), nil)

	out, err := fn(context.Background(), events.APIGatewayProxyRequest{
		PathParameters:        map[string]string{"proxy": "missing.jpg"},
		QueryStringParameters: map[string]string{"resize": "100x100"},
	})
	require.NoError(t, err)

	assert.Equal(t, 404, out.StatusCode)
	assert.False(t, out.IsBase64Encoded)
	assert.JSONEq(t, `{"error":"Image not found"}`, out.Body)
}

func TestLambdaHandler_MissingProxyParameter(t *testing.T) {
	fn := NewLambdaHandler(newTestHandler(t, memoryStore{}), nil)

	out, err := fn(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)

	assert.Equal(t, 400, out.StatusCode)
	assert.JSONEq(t, `{"error":"Missing image path"}`, out.Body)
}

type countingFlusher struct {
	calls int
}

func (f *countingFlusher) ForceFlush(context.Context) error {
	f.calls++
	return nil
}

func TestLambdaHandler_FlushesAfterEveryInvocation(t *testing.T) {
	flusher := &countingFlusher{}
	fn := NewLambdaHandler(newTestHandler(t, memoryStore{"a.png": {Body: testPNG(t, 4, 4)}}), flusher)

	for _, key := range []string{"a.png", "missing.png", ""} {
		_, err := fn(context.Background(), events.APIGatewayProxyRequest{PathParameters: map[string]string{"proxy": key}})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, flusher.calls)
}
