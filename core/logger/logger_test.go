package logger

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithLogger_LambdaRequestID(t *testing.T) {
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-42"})

	ctx, rlog := ContextWithLogger(ctx)
	require.NotNil(t, rlog)
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))

	// a second call keeps the existing logger
	_, again := ContextWithLogger(ctx)
	assert.Same(t, rlog, again)
}

func TestContextWithLogger_GeneratedRequestID(t *testing.T) {
	ctx, _ := ContextWithLogger(context.Background())
	id := RequestIDFromContext(ctx)
	assert.NotEmpty(t, id)

	other, _ := ContextWithLogger(context.Background())
	assert.NotEqual(t, id, RequestIDFromContext(other))
}

func TestContextWithLoggerDevice(t *testing.T) {
	ctx, rlog := ContextWithLoggerDevice(context.Background(), "dev1")
	assert.Equal(t, "dev1", rlog.Data[deviceLoggerKey])
	assert.Equal(t, rlog, FromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))
}

func TestFromContext_NoLogger(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("loud"))
}
