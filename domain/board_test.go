package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBoardStats(t *testing.T) {
	board := &Board{ID: 1, Members: []int64{4, 5, 4}}
	tasks := []Task{
		{BoardID: 1, Status: StatusToDo, Priority: PriorityHigh},
		{BoardID: 1, Status: StatusToDo, Priority: PriorityLow},
		{BoardID: 1, Status: StatusDone, Priority: PriorityHigh},
		{BoardID: 1, Status: StatusReviewing, Priority: PriorityCritical},
		{BoardID: 2, Status: StatusToDo, Priority: PriorityHigh},
	}

	stats := ComputeBoardStats(board, tasks)
	assert.Equal(t, BoardStats{
		MemberCount:        2,
		TicketCount:        4,
		TasksToDoCount:     2,
		TasksHighPrioCount: 2,
	}, stats)
}

func TestComputeBoardStatsEmpty(t *testing.T) {
	assert.Equal(t, BoardStats{}, ComputeBoardStats(&Board{ID: 3}, nil))
	assert.Equal(t, BoardStats{}, ComputeBoardStats(nil, []Task{{BoardID: 3}}))
}

func TestSetMembersDeduplicates(t *testing.T) {
	var b Board
	b.SetMembers([]int64{3, 1, 3, 2, 1})
	assert.Equal(t, []int64{3, 1, 2}, b.Members)

	b.SetMembers(nil)
	assert.Empty(t, b.Members)
}

func TestTaskDefaults(t *testing.T) {
	task := Task{}
	task.ApplyDefaults()
	assert.Equal(t, StatusToDo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)

	task = Task{Status: StatusDone, Priority: PriorityCritical}
	task.ApplyDefaults()
	assert.Equal(t, StatusDone, task.Status)
	assert.Equal(t, PriorityCritical, task.Priority)
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, StatusReviewing.Valid())
	assert.False(t, TaskStatus("review").Valid())
	assert.True(t, PriorityCritical.Valid())
	assert.False(t, TaskPriority("urgent").Valid())
}
