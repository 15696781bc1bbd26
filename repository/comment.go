package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

type CommentRepository interface {
	ListByTask(ctx context.Context, taskID int64) ([]domain.Comment, error)
	Create(ctx context.Context, comment *domain.Comment) error
	// CountByTasks returns the number of comments per task id; tasks without comments are absent.
	CountByTasks(ctx context.Context, taskIDs []int64) (map[int64]int, error)
}
