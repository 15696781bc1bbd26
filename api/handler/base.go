package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

var errNotFound = domain.NewError(domain.ErrCodeNotFound, "Not found.")

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

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		h.logger.Error("response encoding failed", zap.Error(err), zap.String("request_id", httpcontext.RequestID(ctx)))
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// respondSuccess writes the representation itself, without an envelope.
func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, data)
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	requestID := httpcontext.RequestID(ctx)
	status, payload := transport.ErrorFrom(err, requestID)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.ByteString("path", ctx.Path()))
	}
	h.respondJSON(ctx, status, payload)
}

// bind decodes and validates the body, answering 400 itself on failure.
func (h baseHandler) bind(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := transport.Bind(ctx.PostBody(), dst); err != nil {
		if cause := errors.Unwrap(err); cause != nil {
			h.logger.Debug("request body rejected",
				zap.Error(cause),
				zap.String("request_id", httpcontext.RequestID(ctx)))
		}
		h.respondError(ctx, err)
		return false
	}
	return true
}

// pathID reads a numeric route parameter; anything else is answered with 404.
func (h baseHandler) pathID(ctx *fasthttp.RequestCtx, name string) (int64, bool) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondError(ctx, errNotFound)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional numeric query parameter. Absent means 0; anything that is not
// an integer of at least floor is a field error.
func queryInt(args *fasthttp.Args, name string, floor int64) (int64, error) {
	raw := args.Peek(name)
	if len(raw) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || v < floor {
		return 0, domain.FieldError(name, fmt.Sprintf("A valid integer of at least %d is required.", floor))
	}
	return v, nil
}
