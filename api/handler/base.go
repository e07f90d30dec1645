package handler

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload.Marshal())
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	if status == http.StatusNoContent {
		ctx.SetStatusCode(status)
		return
	}
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := domain.MessageOf(err)
	if status == http.StatusInternalServerError {
		appLogger.FromContext(stdCtx, h.logger).Error("request failed",
			zap.String("path", string(ctx.Path())), zap.Error(err))
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return false
	}
	return true
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeUnauthorized, domain.ErrCodeSessionAbsent:
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.ErrCodeAuth:
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeValidation:
		return http.StatusUnprocessableEntity, string(code)
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeConflict:
		return http.StatusConflict, string(code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
