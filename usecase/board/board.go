package board

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/taskboard/domain"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

const maxTitleLength = 50

type CreateInput struct {
	Title   string
	Members []int64
}

// UpdateInput is a partial update; nil fields are left unchanged. Members replaces the
// whole member set when present.
type UpdateInput struct {
	Title   *string
	Members *[]int64
}

type UseCase struct {
	boards   repository.BoardRepository
	tasks    repository.TaskRepository
	resolver *usecase.Resolver
	logger   *zap.Logger
}

func New(boards repository.BoardRepository, tasks repository.TaskRepository, resolver *usecase.Resolver, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		boards:   boards,
		tasks:    tasks,
		resolver: resolver,
		logger:   logger,
	}
}

// List returns the boards requester owns or belongs to, with fresh counts.
func (uc *UseCase) List(ctx context.Context, requester *domain.User) ([]domain.BoardOverview, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	boards, err := uc.boards.ListForUser(ctx, requester.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	stats, err := uc.boards.Stats(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.BoardOverview, 0, len(boards))
	for _, b := range boards {
		out = append(out, domain.BoardOverview{Board: b, Stats: stats[b.ID]})
	}
	return out, nil
}

// Create stores a new board owned by requester.
func (uc *UseCase) Create(ctx context.Context, requester *domain.User, in CreateInput) (*domain.BoardOverview, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if _, err := uc.resolver.RequireUsers(ctx, "members", in.Members); err != nil {
		return nil, err
	}

	board := &domain.Board{Title: title, OwnerID: requester.ID}
	board.SetMembers(in.Members)
	if err := uc.boards.Create(ctx, board); err != nil {
		return nil, err
	}

	appLogger.FromContext(ctx, uc.logger).Info("board created", zap.Int64("board_id", board.ID), zap.Int64("owner_id", requester.ID))
	return &domain.BoardOverview{
		Board: *board,
		Stats: domain.ComputeBoardStats(board, nil),
	}, nil
}

// Get returns the board with its owner, members and tasks.
func (uc *UseCase) Get(ctx context.Context, requester *domain.User, id int64) (*domain.BoardDetails, error) {
	board, err := uc.authorized(ctx, requester, domain.ActionRead, id)
	if err != nil {
		return nil, err
	}

	details := &domain.BoardDetails{Board: *board}
	var tasks []domain.Task

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return uc.fillUsers(gctx, details)
	})
	g.Go(func() error {
		var err error
		tasks, err = uc.tasks.List(gctx, repository.TaskFilter{BoardID: board.ID})
		if err != nil {
			return err
		}
		details.Tasks, err = uc.resolver.Tasks(gctx, tasks)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details.Stats = domain.ComputeBoardStats(board, tasks)
	return details, nil
}

// Update changes the title and/or replaces the member set. The result carries owner and
// members but no tasks.
func (uc *UseCase) Update(ctx context.Context, requester *domain.User, id int64, in UpdateInput) (*domain.BoardDetails, error) {
	board, err := uc.authorized(ctx, requester, domain.ActionUpdate, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if board.Title, err = validateTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Members != nil {
		if _, err := uc.resolver.RequireUsers(ctx, "members", *in.Members); err != nil {
			return nil, err
		}
		board.SetMembers(*in.Members)
	}

	if err := uc.boards.Update(ctx, board); err != nil {
		return nil, err
	}

	details := &domain.BoardDetails{Board: *board}
	if err := uc.fillUsers(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// Delete removes the board and, with it, its tasks and their comments.
func (uc *UseCase) Delete(ctx context.Context, requester *domain.User, id int64) error {
	if _, err := uc.authorized(ctx, requester, domain.ActionDelete, id); err != nil {
		return err
	}
	if err := uc.boards.Delete(ctx, id); err != nil {
		return err
	}
	appLogger.FromContext(ctx, uc.logger).Info("board deleted", zap.Int64("board_id", id))
	return nil
}

func (uc *UseCase) authorized(ctx context.Context, requester *domain.User, action domain.Action, id int64) (*domain.Board, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	board, err := uc.boards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeBoard(requester, action, board); err != nil {
		uc.logger.Debug("board access denied",
			zap.Int64("board_id", id),
			zap.Int64("user_id", requester.ID),
			zap.String("action", string(action)))
		return nil, err
	}
	return board, nil
}

func (uc *UseCase) fillUsers(ctx context.Context, details *domain.BoardDetails) error {
	ids := append([]int64{details.Board.OwnerID}, details.Board.Members...)
	users, err := uc.resolver.Users(ctx, ids)
	if err != nil {
		return err
	}
	if owner, ok := users[details.Board.OwnerID]; ok {
		details.Owner = &owner
	}
	details.Members = make([]domain.User, 0, len(details.Board.Members))
	for _, id := range details.Board.Members {
		if u, ok := users[id]; ok {
			details.Members = append(details.Members, u)
		}
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", domain.FieldError("title", "This field may not be blank.")
	case len([]rune(title)) > maxTitleLength:
		return "", domain.FieldError("title", "Ensure this field has no more than 50 characters.")
	}
	return title, nil
}
