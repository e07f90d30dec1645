package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

const sessionKey = "session"

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// RequireSession rejects requests without a valid, unrevoked bearer token and
// stores the session on the request for the handlers.
func RequireSession(auth Authenticator, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			session, err := auth.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("session lookup failed", zap.Error(err))
					ctx.Response.Header.SetContentType("application/json")
					ctx.SetStatusCode(http.StatusServiceUnavailable)
					ctx.SetBody(transport.NewError(string(domain.ErrCodeInternal), "session lookup failed", nil).Marshal())
					return
				}
				logger.Debug("rejected bearer token", zap.Error(err))
				unauthorized(ctx, domain.MessageOf(err))
				return
			}

			ctx.SetUserValue(sessionKey, session)
			ctx.SetUserValue(httpcontext.UserIDValue, session.UserID)
			next(ctx)
		}
	}
}

// APIKey requires the project key in the apikey header. An empty key disables the check.
func APIKey(expected string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if expected == "" {
			return next
		}
		return func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Request.Header.Peek("apikey")) != expected {
				unauthorized(ctx, "invalid api key")
				return
			}
			next(ctx)
		}
	}
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx *fasthttp.RequestCtx) *domain.Session {
	if session, ok := ctx.UserValue(sessionKey).(*domain.Session); ok {
		return session
	}
	return &domain.Session{}
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(http.StatusUnauthorized)
	ctx.SetBody(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil).Marshal())
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
