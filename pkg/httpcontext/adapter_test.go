package httpcontext_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
)

func Test_Adapter_Attach_ReusesRequestID(t *testing.T) {
	adapter := httpcontext.NewAdapter(time.Second)
	var reqCtx fasthttp.RequestCtx
	reqCtx.Request.Header.Set("X-Request-ID", "abc-123")
	reqCtx.SetUserValue(httpcontext.UserIDValue, "user-9")

	ctx, cancel := adapter.Attach(&reqCtx)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
	assert.Equal(t, "abc-123", string(reqCtx.Response.Header.Peek("X-Request-ID")))

	core, logs := observer.New(zapcore.InfoLevel)
	logger.FromContext(ctx, zap.New(core)).Info("probe")
	require.Len(t, logs.All(), 1)
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc-123", fields["request_id"])
	assert.Equal(t, "user-9", fields["user_id"])
}

func Test_Adapter_Attach_MintsRequestID(t *testing.T) {
	adapter := httpcontext.NewAdapter(0)
	var reqCtx fasthttp.RequestCtx
	reqCtx.Request.Header.Set("X-Request-ID", strings.Repeat("x", 200))

	_, cancel := adapter.Attach(&reqCtx)
	defer cancel()

	_, err := uuid.Parse(string(reqCtx.Response.Header.Peek("X-Request-ID")))
	assert.NoError(t, err)
}
