package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register an account and open its first session
// @Tags auth
// @Router /auth/v1/signup [post]
func (h *AuthHandler) SignUp(ctx *fasthttp.RequestCtx) {
	var req transport.CredentialsRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	grant, err := h.uc.SignUp(stdCtx, domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, grantResponse(grant))
}

// @Summary Exchange credentials for a session
// @Tags auth
// @Router /auth/v1/token [post]
func (h *AuthHandler) Token(ctx *fasthttp.RequestCtx) {
	if grantType := string(ctx.QueryArgs().Peek("grant_type")); grantType != "password" {
		h.respondInvalid(ctx, "unsupported grant_type")
		return
	}

	var req transport.CredentialsRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	grant, err := h.uc.SignIn(stdCtx, domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, grantResponse(grant))
}

// @Summary Revoke the calling session
// @Tags auth
// @Router /auth/v1/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFrom(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SignOut(stdCtx, session.ID); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Identity behind the bearer token
// @Tags auth
// @Router /auth/v1/user [get]
func (h *AuthHandler) User(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFrom(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.CurrentUser(stdCtx, session.UserID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			err = domain.WrapError(domain.ErrCodeUnauthorized, "user no longer exists", err)
		}
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, userResponse(user))
}

func grantResponse(grant *authUC.Grant) transport.AuthResponse {
	return transport.AuthResponse{
		AccessToken: grant.Session.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   grant.Session.ExpiresAt.Unix(),
		SessionID:   grant.Session.ID,
		User:        userResponse(grant.User),
	}
}

func userResponse(user *domain.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
