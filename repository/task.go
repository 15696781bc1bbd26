package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskFilter narrows a task listing. Zero fields match everything; a zero Limit returns all rows.
type TaskFilter struct {
	BoardID    int64
	AssigneeID int64
	ReviewerID int64
	Status     domain.TaskStatus
	Priority   domain.TaskPriority
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64) error
}
