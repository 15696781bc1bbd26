package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Param board query int false "board id"
// @Param status query string false "to-do, in-progress, reviewing or done"
// @Param priority query string false "low, medium, high or critical"
// @Router /tasks/ [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	boardID, err := queryInt(args, "board", 1)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	limit, err := queryInt(args, "limit", 0)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	offset, err := queryInt(args, "offset", 0)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	filter := repository.TaskFilter{
		BoardID:  boardID,
		Status:   domain.TaskStatus(args.Peek("status")),
		Priority: domain.TaskPriority(args.Peek("priority")),
		Limit:    int(limit),
		Offset:   int(offset),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, filter)
	h.respondTasks(ctx, tasks, err)
}

// @Summary Tasks assigned to the user
// @Tags tasks
// @Router /tasks/assigned-to-me/ [get]
func (h *TaskHandler) AssignedToMe(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.AssignedTo(stdCtx, middleware.UserFrom(ctx))
	h.respondTasks(ctx, tasks, err)
}

// @Summary Tasks the user reviews
// @Tags tasks
// @Router /tasks/reviewing/ [get]
func (h *TaskHandler) Reviewing(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Reviewing(stdCtx, middleware.UserFrom(ctx))
	h.respondTasks(ctx, tasks, err)
}

// @Summary Create task
// @Tags tasks
// @Router /tasks/ [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if !h.bind(ctx, &req) {
		return
	}

	in := taskUC.CreateInput{
		BoardID:     req.Board,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		ReviewerID:  req.ReviewerID,
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		in.DueDate = due
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, middleware.UserFrom(ctx), in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTask(ctx, http.StatusCreated, transport.ActionCreate, *created)
}

// @Summary Get task
// @Tags tasks
// @Router /tasks/{id}/ [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTask(ctx, http.StatusOK, transport.ActionRetrieve, *task)
}

// @Summary Partially update task
// @Tags tasks
// @Router /tasks/{id}/ [patch]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.TaskPatchRequest
	if !h.bind(ctx, &req) {
		return
	}

	in := taskUC.UpdateInput{
		BoardID:     req.Board,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  taskUC.Optional[int64]{Set: req.AssigneeID.Set, Value: req.AssigneeID.Value},
		ReviewerID:  taskUC.Optional[int64]{Set: req.ReviewerID.Set, Value: req.ReviewerID.Value},
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		in.Priority = &priority
	}
	if req.DueDate.Set {
		in.DueDate.Set = true
		if req.DueDate.Value != nil {
			due, err := parseDate(*req.DueDate.Value)
			if err != nil {
				h.respondError(ctx, err)
				return
			}
			in.DueDate.Value = due
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, middleware.UserFrom(ctx), id, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTask(ctx, http.StatusOK, transport.ActionPartialUpdate, *updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /tasks/{id}/ [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
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

// @Summary Assign a reviewer
// @Tags tasks
// @Router /tasks/{id}/reviewer/ [patch]
func (h *TaskHandler) AssignReviewer(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.ReviewerAssignRequest
	if !h.bind(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.AssignReviewer(stdCtx, middleware.UserFrom(ctx), id, req.ReviewerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondTask(ctx, http.StatusOK, transport.ActionAssignReviewer, *task)
}

func (h *TaskHandler) respondTask(ctx *fasthttp.RequestCtx, status int, action transport.Action, task domain.TaskDetails) {
	view, err := transport.TaskView(action, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, status, view)
}

func (h *TaskHandler) respondTasks(ctx *fasthttp.RequestCtx, tasks []domain.TaskDetails, err error) {
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	views, err := transport.TaskViews(transport.ActionList, tasks)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, views)
}

func parseDate(value string) (*time.Time, error) {
	due, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil, domain.FieldError("due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return &due, nil
}
