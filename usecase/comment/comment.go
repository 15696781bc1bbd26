package comment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

type UseCase struct {
	comments repository.CommentRepository
	tasks    repository.TaskRepository
	boards   repository.BoardRepository
	resolver *usecase.Resolver
	policy   domain.TaskPolicy
	logger   *zap.Logger
}

func New(
	comments repository.CommentRepository,
	tasks repository.TaskRepository,
	boards repository.BoardRepository,
	resolver *usecase.Resolver,
	policy domain.TaskPolicy,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		comments: comments,
		tasks:    tasks,
		boards:   boards,
		resolver: resolver,
		policy:   policy,
		logger:   logger,
	}
}

// List returns the comments of a task, oldest first.
func (uc *UseCase) List(ctx context.Context, taskID int64) ([]domain.CommentDetails, error) {
	if _, err := uc.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := uc.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var authorIDs []int64
	for _, c := range comments {
		if c.AuthorID != nil {
			authorIDs = append(authorIDs, *c.AuthorID)
		}
	}
	authors, err := uc.resolver.Users(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CommentDetails, 0, len(comments))
	for _, c := range comments {
		details := domain.CommentDetails{Comment: c}
		if c.AuthorID != nil {
			if author, ok := authors[*c.AuthorID]; ok {
				details.Author = &author
			}
		}
		out = append(out, details)
	}
	return out, nil
}

// Create adds a comment by requester, who must be allowed to work on the task's board.
func (uc *UseCase) Create(ctx context.Context, requester *domain.User, taskID int64, text string) (*domain.CommentDetails, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	board, err := uc.boards.GetByID(ctx, task.BoardID)
	if err != nil {
		return nil, err
	}
	if err := uc.policy.AuthorizeComment(requester, board); err != nil {
		uc.logger.Debug("comment denied", zap.Int64("task_id", taskID), zap.Int64("user_id", requester.ID))
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.FieldError("content", "This field may not be blank.")
	}

	author := requester.ID
	comment := &domain.Comment{TaskID: task.ID, AuthorID: &author, Text: text}
	if err := uc.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return &domain.CommentDetails{Comment: *comment, Author: requester}, nil
}
