package comment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase"
)

func setup(t *testing.T) (*UseCase, *memory.Store, *domain.User, *domain.User, *domain.Task) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	member := &domain.User{Email: "m@example.com", Fullname: "Mia Member", Username: "miamember"}
	stranger := &domain.User{Email: "s@example.com", Fullname: "Sam Stranger", Username: "samstranger"}
	require.NoError(t, store.Users().Create(ctx, member))
	require.NoError(t, store.Users().Create(ctx, stranger))

	board := &domain.Board{Title: "b", OwnerID: stranger.ID, Members: []int64{member.ID}}
	require.NoError(t, store.Boards().Create(ctx, board))
	task := &domain.Task{BoardID: board.ID, Title: "t", Status: domain.StatusToDo, Priority: domain.PriorityLow}
	require.NoError(t, store.Tasks().Create(ctx, task))

	resolver := usecase.NewResolver(store.Users(), store.Comments())
	uc := New(store.Comments(), store.Tasks(), store.Boards(), resolver, domain.TaskPolicy{}, zaptest.NewLogger(t))
	return uc, store, member, stranger, task
}

func TestCreateAndList(t *testing.T) {
	uc, _, member, _, task := setup(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, member, task.ID, "  looks good ")
	require.NoError(t, err)
	assert.Equal(t, "looks good", created.Comment.Text)
	assert.Equal(t, "Mia Member", created.Author.Fullname)
	assert.False(t, created.Comment.CreatedAt.IsZero())

	comments, err := uc.List(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, member.ID, comments[0].Author.ID)
}

func TestCreateRules(t *testing.T) {
	uc, _, member, stranger, task := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, nil, task.ID, "x")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	// board owner without membership
	_, err = uc.Create(ctx, stranger, task.ID, "x")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = uc.Create(ctx, member, task.ID, "   ")
	assert.Contains(t, domain.FieldsOf(err), "content")

	_, err = uc.Create(ctx, member, 999, "x")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestListUnknownTask(t *testing.T) {
	uc, _, _, _, _ := setup(t)

	_, err := uc.List(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
