package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

func TestBoardDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := New()

	owner := &domain.User{Email: "o@example.com", Username: "o"}
	require.NoError(t, store.Users().Create(ctx, owner))

	board := &domain.Board{Title: "Board", OwnerID: owner.ID}
	require.NoError(t, store.Boards().Create(ctx, board))

	task := &domain.Task{BoardID: board.ID, Title: "T", Status: domain.StatusToDo}
	require.NoError(t, store.Tasks().Create(ctx, task))
	require.NoError(t, store.Comments().Create(ctx, &domain.Comment{TaskID: task.ID, Text: "hi"}))

	require.NoError(t, store.Boards().Delete(ctx, board.ID))

	_, err := store.Tasks().GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	comments, err := store.Comments().ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestBoardStatsFollowMembersAndTasks(t *testing.T) {
	ctx := context.Background()
	store := New()

	board := &domain.Board{Title: "B", OwnerID: 1, Members: []int64{2, 3, 2}}
	require.NoError(t, store.Boards().Create(ctx, board))
	assert.Equal(t, []int64{2, 3}, board.Members)

	for _, task := range []domain.Task{
		{BoardID: board.ID, Status: domain.StatusToDo, Priority: domain.PriorityHigh},
		{BoardID: board.ID, Status: domain.StatusDone, Priority: domain.PriorityHigh},
		{BoardID: board.ID, Status: domain.StatusToDo, Priority: domain.PriorityLow},
	} {
		task := task
		require.NoError(t, store.Tasks().Create(ctx, &task))
	}

	stats, err := store.Boards().Stats(ctx, []int64{board.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.BoardStats{MemberCount: 2, TicketCount: 3, TasksToDoCount: 2, TasksHighPrioCount: 2}, stats[board.ID])

	board.Members = []int64{3}
	require.NoError(t, store.Boards().Update(ctx, board))

	stats, err = store.Boards().Stats(ctx, []int64{board.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, stats[board.ID].MemberCount)
}

func TestUserEmailIsUnique(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	require.NoError(t, users.Create(ctx, &domain.User{Email: "Max@Example.com", Username: "max"}))
	err := users.Create(ctx, &domain.User{Email: "max@example.com", Username: "max1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	user, err := users.GetByEmail(ctx, "MAX@example.com")
	require.NoError(t, err)
	assert.Equal(t, "max", user.Username)
}

func TestTaskListFilters(t *testing.T) {
	ctx := context.Background()
	store := New()
	board := &domain.Board{Title: "B", OwnerID: 1}
	require.NoError(t, store.Boards().Create(ctx, board))

	reviewer := int64(7)
	require.NoError(t, store.Tasks().Create(ctx, &domain.Task{BoardID: board.ID, Status: domain.StatusReviewing, ReviewerID: &reviewer}))
	require.NoError(t, store.Tasks().Create(ctx, &domain.Task{BoardID: board.ID, Status: domain.StatusToDo, Priority: domain.PriorityHigh}))

	tasks, err := store.Tasks().List(ctx, repository.TaskFilter{ReviewerID: reviewer})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.StatusReviewing, tasks[0].Status)

	tasks, err = store.Tasks().List(ctx, repository.TaskFilter{Priority: domain.PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	tasks, err = store.Tasks().List(ctx, repository.TaskFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(2), tasks[0].ID)
}
