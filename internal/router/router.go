package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New wires the identity and record routes. apiKey guards every route except
// /health; session additionally guards everything that acts for a user.
func New(handlers Handlers, apiKey, session Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Identity routes
	r.POST("/auth/v1/signup", apiKey(handlers.Auth.SignUp))
	r.POST("/auth/v1/token", apiKey(handlers.Auth.Token))
	r.POST("/auth/v1/logout", apiKey(session(handlers.Auth.Logout)))
	r.GET("/auth/v1/user", apiKey(session(handlers.Auth.User)))

	// Record routes
	r.GET("/rest/v1/tasks", apiKey(session(handlers.Task.GetTasks)))
	r.POST("/rest/v1/tasks", apiKey(session(handlers.Task.CreateTask)))
	r.PATCH("/rest/v1/tasks", apiKey(session(handlers.Task.UpdateTask)))
	r.DELETE("/rest/v1/tasks", apiKey(session(handlers.Task.DeleteTask)))

	return r
}
