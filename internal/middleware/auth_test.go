package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/metrics"
	"github.com/fastygo/taskboard/repository/memory"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

func setup(t *testing.T) (*TokenAuth, string) {
	t.Helper()
	store := memory.New()
	uc := authUC.New(store.Users(), store.Tokens(), bcrypt.MinCost, zaptest.NewLogger(t))
	res, err := uc.Register(context.Background(), authUC.RegisterInput{
		Email:            "kim@example.com",
		Fullname:         "Kim Lee",
		Password:         "pw",
		RepeatedPassword: "pw",
	})
	require.NoError(t, err)
	return NewTokenAuth(uc, nil, metrics.New("test"), zaptest.NewLogger(t)), res.Token.Key
}

func serve(handler fasthttp.RequestHandler, authorization string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	if authorization != "" {
		ctx.Request.Header.Set(fasthttp.HeaderAuthorization, authorization)
	}
	handler(&ctx)
	return &ctx
}

func TestRequiredResolvesUser(t *testing.T) {
	mw, key := setup(t)

	var seen *domain.User
	var seenKey string
	handler := mw.Required(func(ctx *fasthttp.RequestCtx) {
		seen = UserFrom(ctx)
		seenKey = TokenFrom(ctx)
	})

	for _, scheme := range []string{"Token ", "Bearer ", "token "} {
		seen = nil
		ctx := serve(handler, scheme+key)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		require.NotNil(t, seen)
		assert.Equal(t, "kim@example.com", seen.Email)
		assert.Equal(t, key, seenKey)
	}
}

func TestRequiredRejects(t *testing.T) {
	mw, key := setup(t)
	called := false
	handler := mw.Required(func(*fasthttp.RequestCtx) { called = true })

	for _, header := range []string{"", "Token", "Basic " + key, "Token deadbeef"} {
		ctx := serve(handler, header)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode(), header)
		assert.Contains(t, string(ctx.Response.Body()), `"code":"UNAUTHORIZED"`)
	}
	assert.False(t, called)
}

func TestOptionalAllowsAnonymousButNotInvalid(t *testing.T) {
	mw, _ := setup(t)
	var anonymous bool
	handler := mw.Optional(func(ctx *fasthttp.RequestCtx) {
		anonymous = UserFrom(ctx) == nil
	})

	ctx := serve(handler, "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.True(t, anonymous)

	ctx = serve(handler, "Token nope")
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}
