package usecase

import (
	"context"
	"fmt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Resolver loads the users and comment counts that task and board representations embed.
type Resolver struct {
	users    repository.UserRepository
	comments repository.CommentRepository
}

func NewResolver(users repository.UserRepository, comments repository.CommentRepository) *Resolver {
	return &Resolver{users: users, comments: comments}
}

// Users returns the accounts for ids keyed by id; unknown ids are absent.
func (r *Resolver) Users(ctx context.Context, ids []int64) (map[int64]domain.User, error) {
	users, err := r.users.ListByIDs(ctx, domain.UniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// RequireUsers returns the accounts for ids in order, failing with a validation error bound
// to field when any id does not resolve.
func (r *Resolver) RequireUsers(ctx context.Context, field string, ids []int64) ([]domain.User, error) {
	ids = domain.UniqueIDs(ids)
	byID, err := r.Users(ctx, ids)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, domain.FieldError(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
		users = append(users, u)
	}
	return users, nil
}

// Tasks resolves assignee, reviewer and comment count for every task.
func (r *Resolver) Tasks(ctx context.Context, tasks []domain.Task) ([]domain.TaskDetails, error) {
	if len(tasks) == 0 {
		return []domain.TaskDetails{}, nil
	}

	var userIDs []int64
	taskIDs := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		if t.AssigneeID != nil {
			userIDs = append(userIDs, *t.AssigneeID)
		}
		if t.ReviewerID != nil {
			userIDs = append(userIDs, *t.ReviewerID)
		}
	}

	users, err := r.Users(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	counts, err := r.comments.CountByTasks(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	details := make([]domain.TaskDetails, 0, len(tasks))
	for _, t := range tasks {
		details = append(details, domain.TaskDetails{
			Task:          t,
			Assignee:      lookup(users, t.AssigneeID),
			Reviewer:      lookup(users, t.ReviewerID),
			CommentsCount: counts[t.ID],
		})
	}
	return details, nil
}

// Task resolves a single task.
func (r *Resolver) Task(ctx context.Context, task *domain.Task) (*domain.TaskDetails, error) {
	details, err := r.Tasks(ctx, []domain.Task{*task})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func lookup(users map[int64]domain.User, id *int64) *domain.User {
	if id == nil {
		return nil
	}
	u, ok := users[*id]
	if !ok {
		return nil
	}
	return &u
}
