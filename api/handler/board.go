package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	boardUC "github.com/fastygo/taskboard/usecase/board"
)

type BoardHandler struct {
	baseHandler
	uc *boardUC.UseCase
}

func NewBoardHandler(uc *boardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List boards the user owns or belongs to
// @Tags boards
// @Router /boards/ [get]
func (h *BoardHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	boards, err := h.uc.List(stdCtx, middleware.UserFrom(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	views, err := transport.BoardViews(transport.ActionList, boards)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, views)
}

// @Summary Create board
// @Tags boards
// @Router /boards/ [post]
func (h *BoardHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.BoardCreateRequest
	if !h.bind(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, middleware.UserFrom(ctx), boardUC.CreateInput{
		Title:   req.Title,
		Members: req.Members,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondBoard(ctx, http.StatusCreated, transport.ActionCreate, domain.BoardDetails{Board: created.Board, Stats: created.Stats})
}

// @Summary Board detail with members and tasks
// @Tags boards
// @Router /boards/{id}/ [get]
func (h *BoardHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	details, err := h.uc.Get(stdCtx, middleware.UserFrom(ctx), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondBoard(ctx, http.StatusOK, transport.ActionRetrieve, *details)
}

// @Summary Update title and/or members
// @Tags boards
// @Router /boards/{id}/ [patch]
func (h *BoardHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.BoardPatchRequest
	if !h.bind(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	details, err := h.uc.Update(stdCtx, middleware.UserFrom(ctx), id, boardUC.UpdateInput{
		Title:   req.Title,
		Members: req.Members,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondBoard(ctx, http.StatusOK, transport.ActionPartialUpdate, *details)
}

// @Summary Delete board
// @Tags boards
// @Router /boards/{id}/ [delete]
func (h *BoardHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, middleware.UserFrom(ctx), id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

func (h *BoardHandler) respondBoard(ctx *fasthttp.RequestCtx, status int, action transport.Action, details domain.BoardDetails) {
	view, err := transport.BoardView(action, details)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, status, view)
}
