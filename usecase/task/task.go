package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

const maxTitleLength = 100

// Optional is a patch field that may be absent, explicitly null (Value nil) or set.
type Optional[T any] struct {
	Set   bool
	Value *T
}

type CreateInput struct {
	BoardID     int64
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssigneeID  *int64
	ReviewerID  *int64
}

// UpdateInput is a partial update; nil and unset fields keep their stored value.
type UpdateInput struct {
	BoardID     *int64
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     Optional[time.Time]
	AssigneeID  Optional[int64]
	ReviewerID  Optional[int64]
}

type UseCase struct {
	tasks    repository.TaskRepository
	boards   repository.BoardRepository
	users    repository.UserRepository
	resolver *usecase.Resolver
	policy   domain.TaskPolicy
	logger   *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	boards repository.BoardRepository,
	users repository.UserRepository,
	resolver *usecase.Resolver,
	policy domain.TaskPolicy,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		boards:   boards,
		users:    users,
		resolver: resolver,
		policy:   policy,
		logger:   logger,
	}
}

// List returns tasks matching filter. Reading tasks needs no authentication.
func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskDetails, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.FieldError("status", fmt.Sprintf("\"%s\" is not a valid choice.", filter.Status))
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, domain.FieldError("priority", fmt.Sprintf("\"%s\" is not a valid choice.", filter.Priority))
	}
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return uc.resolver.Tasks(ctx, tasks)
}

// AssignedTo lists the tasks whose assignee is requester.
func (uc *UseCase) AssignedTo(ctx context.Context, requester *domain.User) ([]domain.TaskDetails, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return uc.List(ctx, repository.TaskFilter{AssigneeID: requester.ID})
}

// Reviewing lists the tasks requester has to review.
func (uc *UseCase) Reviewing(ctx context.Context, requester *domain.User) ([]domain.TaskDetails, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return uc.List(ctx, repository.TaskFilter{ReviewerID: requester.ID})
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.TaskDetails, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.resolver.Task(ctx, task)
}

// Create stores a task on a board requester belongs to, with requester as author.
func (uc *UseCase) Create(ctx context.Context, requester *domain.User, in CreateInput) (*domain.TaskDetails, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}

	board, err := uc.boards.GetByID(ctx, in.BoardID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.FieldError("board", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.BoardID))
		}
		return nil, err
	}

	task := &domain.Task{
		BoardID:     board.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		AssigneeID:  in.AssigneeID,
		ReviewerID:  in.ReviewerID,
	}
	if err := uc.policy.Authorize(requester, domain.ActionCreate, task, board); err != nil {
		uc.denied(requester, domain.ActionCreate, board.ID)
		return nil, err
	}

	task.ApplyDefaults()
	if err := uc.validate(ctx, task); err != nil {
		return nil, err
	}
	author := requester.ID
	task.AuthorID = &author

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	appLogger.FromContext(ctx, uc.logger).Info("task created", zap.Int64("task_id", task.ID), zap.Int64("board_id", board.ID))
	return uc.resolver.Task(ctx, task)
}

// Update applies a partial update. The board of a task cannot change.
func (uc *UseCase) Update(ctx context.Context, requester *domain.User, id int64, in UpdateInput) (*domain.TaskDetails, error) {
	task, board, err := uc.load(ctx, requester, domain.ActionUpdate, id)
	if err != nil {
		return nil, err
	}

	if in.BoardID != nil && *in.BoardID != task.BoardID {
		return nil, domain.ErrBoardChangeRejected
	}
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.DueDate.Set {
		task.DueDate = in.DueDate.Value
	}
	if in.AssigneeID.Set {
		task.AssigneeID = in.AssigneeID.Value
	}
	if in.ReviewerID.Set {
		task.ReviewerID = in.ReviewerID.Value
	}

	if err := uc.validate(ctx, task); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	appLogger.FromContext(ctx, uc.logger).Debug("task updated", zap.Int64("task_id", task.ID), zap.Int64("board_id", board.ID))
	return uc.resolver.Task(ctx, task)
}

// Delete removes a task and its comments. Only the author or the board owner may do so.
func (uc *UseCase) Delete(ctx context.Context, requester *domain.User, id int64) error {
	if _, _, err := uc.load(ctx, requester, domain.ActionDelete, id); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	appLogger.FromContext(ctx, uc.logger).Info("task deleted", zap.Int64("task_id", id))
	return nil
}

// AssignReviewer sets the reviewer of a task to an existing user.
func (uc *UseCase) AssignReviewer(ctx context.Context, requester *domain.User, id int64, reviewerID *int64) (*domain.TaskDetails, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reviewerID == nil {
		return nil, domain.ErrReviewerIDRequired
	}
	reviewer, err := uc.users.GetByID(ctx, *reviewerID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrReviewerNotFound
		}
		return nil, err
	}

	task.ReviewerID = &reviewer.ID
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	appLogger.FromContext(ctx, uc.logger).Info("reviewer assigned", zap.Int64("task_id", task.ID), zap.Int64("reviewer_id", reviewer.ID))
	return uc.resolver.Task(ctx, task)
}

func (uc *UseCase) load(ctx context.Context, requester *domain.User, action domain.Action, id int64) (*domain.Task, *domain.Board, error) {
	if requester == nil {
		return nil, nil, domain.ErrNotAuthenticated
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	board, err := uc.boards.GetByID(ctx, task.BoardID)
	if err != nil {
		return nil, nil, err
	}
	if err := uc.policy.Authorize(requester, action, task, board); err != nil {
		uc.denied(requester, action, board.ID)
		return nil, nil, err
	}
	return task, board, nil
}

func (uc *UseCase) validate(ctx context.Context, task *domain.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	switch {
	case task.Title == "":
		return domain.FieldError("title", "This field may not be blank.")
	case len([]rune(task.Title)) > maxTitleLength:
		return domain.FieldError("title", "Ensure this field has no more than 100 characters.")
	case !task.Status.Valid():
		return domain.FieldError("status", fmt.Sprintf("\"%s\" is not a valid choice.", task.Status))
	case !task.Priority.Valid():
		return domain.FieldError("priority", fmt.Sprintf("\"%s\" is not a valid choice.", task.Priority))
	}

	if task.AssigneeID != nil {
		if _, err := uc.resolver.RequireUsers(ctx, "assignee_id", []int64{*task.AssigneeID}); err != nil {
			return err
		}
	}
	if task.ReviewerID != nil {
		if _, err := uc.resolver.RequireUsers(ctx, "reviewer_id", []int64{*task.ReviewerID}); err != nil {
			return err
		}
	}
	return nil
}

func (uc *UseCase) denied(requester *domain.User, action domain.Action, boardID int64) {
	uc.logger.Debug("task access denied",
		zap.Int64("board_id", boardID),
		zap.Int64("user_id", requester.ID),
		zap.String("action", string(action)))
}
