package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	commentUC "github.com/fastygo/taskboard/usecase/comment"
)

type CommentHandler struct {
	baseHandler
	uc *commentUC.UseCase
}

func NewCommentHandler(uc *commentUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List comments of a task
// @Tags comments
// @Router /tasks/{id}/comments/ [get]
func (h *CommentHandler) List(ctx *fasthttp.RequestCtx) {
	taskID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comments, err := h.uc.List(stdCtx, taskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	views := make([]transport.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, transport.NewCommentView(c))
	}
	h.respondSuccess(ctx, http.StatusOK, views)
}

// @Summary Comment on a task
// @Tags comments
// @Router /tasks/{id}/comments/ [post]
func (h *CommentHandler) Create(ctx *fasthttp.RequestCtx) {
	taskID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.CommentCreateRequest
	if !h.bind(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, middleware.UserFrom(ctx), taskID, req.Content)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewCommentView(*created))
}
