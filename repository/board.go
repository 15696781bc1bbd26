package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

type BoardRepository interface {
	// GetByID returns the board with its member ids loaded.
	GetByID(ctx context.Context, id int64) (*domain.Board, error)
	// ListForUser returns boards the user owns or is a member of.
	ListForUser(ctx context.Context, userID int64) ([]domain.Board, error)
	// Create persists the board and its member set atomically.
	Create(ctx context.Context, board *domain.Board) error
	// Update stores the title and replaces the member set atomically.
	Update(ctx context.Context, board *domain.Board) error
	// Delete removes the board together with its tasks and their comments.
	Delete(ctx context.Context, id int64) error
	// Stats computes derived counts for the given boards.
	Stats(ctx context.Context, ids []int64) (map[int64]domain.BoardStats, error)
}
