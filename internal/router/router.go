package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/metrics"
	"github.com/fastygo/taskboard/internal/middleware"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Board   *apiHandler.BoardHandler
	Task    *apiHandler.TaskHandler
	Comment *apiHandler.CommentHandler
	Health  *apiHandler.HealthHandler
}

type Options struct {
	// Metrics, when set, exposes /metrics. Wrap the router handler with Metrics.Middleware to record requests.
	Metrics     *metrics.Metrics
	EnablePprof bool
}

func New(handlers Handlers, auth *middleware.TokenAuth, opts Options) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true

	r.GET("/health", handlers.Health.Check)
	if opts.Metrics != nil {
		r.GET("/metrics", opts.Metrics.Handler())
	}
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// Accounts
	r.POST("/registration/", handlers.Auth.Register)
	r.POST("/login/", handlers.Auth.Login)
	r.POST("/logout/", auth.Required(handlers.Auth.Logout))
	r.POST("/email-check/", handlers.Profile.EmailCheck)
	r.GET("/users/me/", auth.Required(handlers.Profile.Me))

	// Boards
	r.GET("/boards/", auth.Required(handlers.Board.List))
	r.POST("/boards/", auth.Required(handlers.Board.Create))
	r.GET("/boards/{id}/", auth.Required(handlers.Board.Get))
	r.PATCH("/boards/{id}/", auth.Required(handlers.Board.Update))
	r.DELETE("/boards/{id}/", auth.Required(handlers.Board.Delete))

	// Tasks; reads are public
	r.GET("/tasks/", auth.Optional(handlers.Task.List))
	r.POST("/tasks/", auth.Required(handlers.Task.Create))
	r.GET("/tasks/assigned-to-me/", auth.Required(handlers.Task.AssignedToMe))
	r.GET("/tasks/reviewing/", auth.Required(handlers.Task.Reviewing))
	r.GET("/tasks/{id}/", auth.Optional(handlers.Task.Get))
	r.PATCH("/tasks/{id}/", auth.Required(handlers.Task.Update))
	r.DELETE("/tasks/{id}/", auth.Required(handlers.Task.Delete))
	r.PATCH("/tasks/{id}/reviewer/", auth.Required(handlers.Task.AssignReviewer))

	// Comments
	r.GET("/tasks/{id}/comments/", auth.Optional(handlers.Comment.List))
	r.POST("/tasks/{id}/comments/", auth.Required(handlers.Comment.Create))

	return r
}

// Handler returns the router's handler wrapped with request metrics when enabled.
func Handler(r *router.Router, m *metrics.Metrics) fasthttp.RequestHandler {
	if m == nil {
		return r.Handler
	}
	return m.Middleware(r.Handler)
}
