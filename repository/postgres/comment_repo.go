package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a Postgres-backed implementation of CommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) repository.CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID int64) ([]domain.Comment, error) {
	const query = `
	SELECT id, task_id, author_id, text, created_at
	FROM comments
	WHERE task_id = $1
	ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO comments (task_id, author_id, text)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, comment.TaskID, comment.AuthorID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) CountByTasks(ctx context.Context, taskIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}
	const query = `
	SELECT task_id, COUNT(*)
	FROM comments
	WHERE task_id = ANY($1)
	GROUP BY task_id
	`
	rows, err := r.pool.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}
