package middleware

import (
	"context"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/metrics"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

const (
	userValueKey  = "auth.user"
	tokenValueKey = "auth.token"
)

// Authenticator resolves an opaque token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*domain.User, error)
}

// TokenAuth resolves the Authorization header and stores the user on the request.
type TokenAuth struct {
	auth    Authenticator
	adapter *httpcontext.Adapter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewTokenAuth(auth Authenticator, adapter *httpcontext.Adapter, m *metrics.Metrics, logger *zap.Logger) *TokenAuth {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return &TokenAuth{auth: auth, adapter: adapter, metrics: m, logger: logger}
}

// Required rejects requests without a valid token.
func (a *TokenAuth) Required(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return a.wrap(next, true)
}

// Optional lets anonymous requests through. A token that is present but invalid is still
// rejected.
func (a *TokenAuth) Optional(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return a.wrap(next, false)
}

func (a *TokenAuth) wrap(next fasthttp.RequestHandler, required bool) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
		if header == "" {
			if required {
				a.reject(ctx, "missing", domain.ErrNotAuthenticated)
				return
			}
			next(ctx)
			return
		}

		key, ok := extractToken(header)
		if !ok {
			a.reject(ctx, "malformed", domain.ErrInvalidToken)
			return
		}

		stdCtx, cancel := a.adapter.Attach(ctx)
		user, err := a.auth.Authenticate(stdCtx, key)
		cancel()
		if err != nil {
			if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
				appLogger.FromContext(stdCtx, a.logger).Error("token lookup failed", zap.Error(err))
				a.respond(ctx, err)
				return
			}
			a.reject(ctx, "invalid_token", err)
			return
		}

		ctx.SetUserValue(userValueKey, user)
		ctx.SetUserValue(tokenValueKey, key)
		httpcontext.SetUserID(ctx, user.ID)
		next(ctx)
	}
}

func (a *TokenAuth) reject(ctx *fasthttp.RequestCtx, reason string, err error) {
	a.metrics.AuthFailure(reason)
	ctx.Response.Header.Set(fasthttp.HeaderWWWAuthenticate, "Token")
	a.respond(ctx, err)
}

func (a *TokenAuth) respond(ctx *fasthttp.RequestCtx, err error) {
	status, payload := transport.ErrorFrom(err, httpcontext.RequestID(ctx))
	body, _ := sonic.Marshal(payload)
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(userValueKey).(*domain.User)
	return user
}

// TokenFrom returns the token key the request authenticated with.
func TokenFrom(ctx *fasthttp.RequestCtx) string {
	key, _ := ctx.UserValue(tokenValueKey).(string)
	return key
}

// extractToken accepts "Token <key>" and "Bearer <key>".
func extractToken(header string) (string, bool) {
	scheme, key, found := strings.Cut(header, " ")
	if !found {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return key, true
	}
	return "", false
}
