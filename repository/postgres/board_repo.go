package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const boardSelect = `
	SELECT b.id, b.title, b.owner_id, b.created_at, b.updated_at,
		COALESCE(
			(SELECT array_agg(m.user_id ORDER BY m.user_id) FROM board_members m WHERE m.board_id = b.id),
			'{}'::bigint[]
		)
	FROM boards b
`

type boardRepository struct {
	pool *pgxpool.Pool
}

// NewBoardRepository returns a Postgres-backed implementation of BoardRepository.
func NewBoardRepository(pool *pgxpool.Pool) repository.BoardRepository {
	return &boardRepository{pool: pool}
}

func (r *boardRepository) GetByID(ctx context.Context, id int64) (*domain.Board, error) {
	return scanBoard(r.pool.QueryRow(ctx, boardSelect+` WHERE b.id = $1`, id))
}

func (r *boardRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Board, error) {
	const where = `
	WHERE b.owner_id = $1
	   OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = b.id AND m.user_id = $1)
	ORDER BY b.id
	`
	rows, err := r.pool.Query(ctx, boardSelect+where, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, *board)
	}
	return boards, rows.Err()
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) error {
	if board == nil {
		return domain.ErrInvalidPayload
	}
	board.SetMembers(board.Members)

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		INSERT INTO boards (title, owner_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRow(ctx, query, board.Title, board.OwnerID).
			Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt); err != nil {
			return err
		}
		return insertMembers(ctx, tx, board.ID, board.Members)
	})
}

func (r *boardRepository) Update(ctx context.Context, board *domain.Board) error {
	if board == nil {
		return domain.ErrInvalidPayload
	}
	board.SetMembers(board.Members)

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		UPDATE boards
		SET title = $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
		`
		if err := tx.QueryRow(ctx, query, board.ID, board.Title).Scan(&board.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrBoardNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM board_members WHERE board_id = $1`, board.ID); err != nil {
			return err
		}
		return insertMembers(ctx, tx, board.ID, board.Members)
	})
}

func (r *boardRepository) Delete(ctx context.Context, id int64) error {
	// tasks and comments follow through ON DELETE CASCADE
	tag, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBoardNotFound
	}
	return nil
}

func (r *boardRepository) Stats(ctx context.Context, ids []int64) (map[int64]domain.BoardStats, error) {
	stats := make(map[int64]domain.BoardStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	const query = `
	SELECT b.id,
		(SELECT COUNT(*) FROM board_members m WHERE m.board_id = b.id),
		COUNT(t.id),
		COUNT(t.id) FILTER (WHERE t.status = 'to-do'),
		COUNT(t.id) FILTER (WHERE t.priority = 'high')
	FROM boards b
	LEFT JOIN tasks t ON t.board_id = b.id
	WHERE b.id = ANY($1)
	GROUP BY b.id
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			s  domain.BoardStats
		)
		if err := rows.Scan(&id, &s.MemberCount, &s.TicketCount, &s.TasksToDoCount, &s.TasksHighPrioCount); err != nil {
			return nil, err
		}
		stats[id] = s
	}
	return stats, rows.Err()
}

func insertMembers(ctx context.Context, q querier, boardID int64, members []int64) error {
	if len(members) == 0 {
		return nil
	}
	const query = `
	INSERT INTO board_members (board_id, user_id)
	SELECT $1, unnest($2::bigint[])
	ON CONFLICT DO NOTHING
	`
	_, err := q.Exec(ctx, query, boardID, members)
	return err
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var board domain.Board
	if err := row.Scan(
		&board.ID,
		&board.Title,
		&board.OwnerID,
		&board.CreatedAt,
		&board.UpdatedAt,
		&board.Members,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}
