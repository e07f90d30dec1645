// Package httpcontext turns a fasthttp request into a context.Context for the use cases.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

// UserIDValue is the fasthttp user value under which the auth middleware
// publishes the authenticated user id.
const UserIDValue = "user_id"

const (
	requestIDHeader   = "X-Request-ID"
	maxRequestIDBytes = 64
)

// Adapter derives a deadline-bound context carrying the request and user ids.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns the request context. The request id is echoed in the response
// so a client can quote it when reporting a failure.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set(requestIDHeader, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if userID, ok := ctx.UserValue(UserIDValue).(string); ok && userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}
	return stdCtx, cancel
}

// requestID reuses the caller's id when it looks sane, otherwise mints one.
func requestID(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader)))
	if header == "" || len(header) > maxRequestIDBytes {
		return uuid.NewString()
	}
	return header
}
