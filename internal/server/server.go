// Package server assembles the HTTP backend from its repositories.
package server

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type Deps struct {
	Users    repository.UserRepository
	Tasks    repository.TaskRepository
	Sessions repository.SessionRepository
	Health   apiHandler.StatusSource
}

type Options struct {
	JWTSecret      string
	JWTIssuer      string
	TokenTTL       time.Duration
	APIKey         string
	RequestTimeout time.Duration
}

// NewHandler returns the routed request handler of the identity and record API.
func NewHandler(deps Deps, opts Options, logger *zap.Logger) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	authUseCase := authUC.New(deps.Users, deps.Sessions, authUC.Config{
		Secret:   opts.JWTSecret,
		TokenTTL: opts.TokenTTL,
		Issuer:   opts.JWTIssuer,
	}, logger.Named("auth"))
	taskUseCase := taskUC.New(deps.Tasks, logger.Named("task"))

	ctxAdapter := httpcontext.NewAdapter(opts.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, logger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, logger),
		Health: apiHandler.NewHealthHandler(deps.Health, ctxAdapter, logger),
	}

	r := router.New(handlers,
		middleware.APIKey(opts.APIKey),
		middleware.RequireSession(authUseCase, ctxAdapter, logger),
	)
	return r.Handler
}
