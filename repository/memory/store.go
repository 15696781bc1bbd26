// Package memory keeps every repository in process memory. Uniqueness and cascades
// follow the SQL schema so it can back tests and local runs without Postgres.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Store holds all entities behind one lock so cascades stay consistent.
type Store struct {
	mu sync.RWMutex

	users    map[int64]domain.User
	tokens   map[string]domain.Token
	boards   map[int64]domain.Board
	tasks    map[int64]domain.Task
	comments map[int64]domain.Comment

	nextUser    int64
	nextBoard   int64
	nextTask    int64
	nextComment int64

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[int64]domain.User),
		tokens:   make(map[string]domain.Token),
		boards:   make(map[int64]domain.Board),
		tasks:    make(map[int64]domain.Task),
		comments: make(map[int64]domain.Comment),
		now:      time.Now,
	}
}

func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Tokens() repository.TokenRepository     { return tokenRepo{s} }
func (s *Store) Boards() repository.BoardRepository     { return boardRepo{s} }
func (s *Store) Tasks() repository.TaskRepository       { return taskRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepo) ListByIDs(_ context.Context, ids []int64) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var users []domain.User
	for _, id := range domain.UniqueIDs(ids) {
		if user, ok := r.s.users[id]; ok {
			users = append(users, user)
		}
	}
	slices.SortFunc(users, func(a, b domain.User) int { return cmp.Compare(a.ID, b.ID) })
	return users, nil
}

func (r userRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = domain.NormalizeEmail(user.Email)
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if existing.Username == user.Username {
			return domain.NewError(domain.ErrCodeConflict, "username already taken")
		}
	}

	r.s.nextUser++
	user.ID = r.s.nextUser
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

type tokenRepo struct{ s *Store }

func (r tokenRepo) GetByKey(_ context.Context, key string) (*domain.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	token, ok := r.s.tokens[key]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return &token, nil
}

func (r tokenRepo) GetByUser(_ context.Context, userID int64) (*domain.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, token := range r.s.tokens {
		if token.UserID == userID {
			return &token, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (r tokenRepo) Create(_ context.Context, token *domain.Token) error {
	if token == nil || token.Key == "" {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, existing := range r.s.tokens {
		if key == token.Key || existing.UserID == token.UserID {
			return domain.NewError(domain.ErrCodeConflict, "token already issued")
		}
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.s.now()
	}
	r.s.tokens[token.Key] = *token
	return nil
}

func (r tokenRepo) Delete(_ context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[key]; !ok {
		return domain.ErrTokenNotFound
	}
	delete(r.s.tokens, key)
	return nil
}

type boardRepo struct{ s *Store }

func (r boardRepo) GetByID(_ context.Context, id int64) (*domain.Board, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	board, ok := r.s.boards[id]
	if !ok {
		return nil, domain.ErrBoardNotFound
	}
	return cloneBoard(board), nil
}

func (r boardRepo) ListForUser(_ context.Context, userID int64) ([]domain.Board, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var boards []domain.Board
	for _, board := range r.s.boards {
		if board.IsOwner(userID) || board.HasMember(userID) {
			boards = append(boards, *cloneBoard(board))
		}
	}
	slices.SortFunc(boards, func(a, b domain.Board) int { return cmp.Compare(a.ID, b.ID) })
	return boards, nil
}

func (r boardRepo) Create(_ context.Context, board *domain.Board) error {
	if board == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextBoard++
	board.ID = r.s.nextBoard
	board.SetMembers(board.Members)
	board.CreatedAt = r.s.now()
	board.UpdatedAt = board.CreatedAt
	r.s.boards[board.ID] = *cloneBoard(*board)
	return nil
}

func (r boardRepo) Update(_ context.Context, board *domain.Board) error {
	if board == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.boards[board.ID]
	if !ok {
		return domain.ErrBoardNotFound
	}
	existing.Title = board.Title
	existing.SetMembers(board.Members)
	existing.UpdatedAt = r.s.now()
	r.s.boards[board.ID] = existing

	board.Members = slices.Clone(existing.Members)
	board.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r boardRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boards[id]; !ok {
		return domain.ErrBoardNotFound
	}
	delete(r.s.boards, id)
	for taskID, task := range r.s.tasks {
		if task.BoardID == id {
			r.s.deleteTaskLocked(taskID)
		}
	}
	return nil
}

func (r boardRepo) Stats(_ context.Context, ids []int64) (map[int64]domain.BoardStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := make([]domain.Task, 0, len(r.s.tasks))
	for _, task := range r.s.tasks {
		tasks = append(tasks, task)
	}

	stats := make(map[int64]domain.BoardStats, len(ids))
	for _, id := range ids {
		board, ok := r.s.boards[id]
		if !ok {
			continue
		}
		stats[id] = domain.ComputeBoardStats(&board, tasks)
	}
	return stats, nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task = cloneTask(task)
	return &task, nil
}

func (r taskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var tasks []domain.Task
	for _, task := range r.s.tasks {
		if matches(task, filter) {
			tasks = append(tasks, cloneTask(task))
		}
	}
	slices.SortFunc(tasks, func(a, b domain.Task) int { return cmp.Compare(a.ID, b.ID) })

	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return nil, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tasks) {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

func (r taskRepo) Create(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.boards[task.BoardID]; !ok {
		return domain.ErrBoardNotFound
	}
	r.s.nextTask++
	task.ID = r.s.nextTask
	task.CreatedAt = r.s.now()
	task.UpdatedAt = task.CreatedAt
	r.s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r taskRepo) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	updated := cloneTask(*task)
	updated.BoardID = existing.BoardID
	updated.AuthorID = existing.AuthorID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.s.now()
	r.s.tasks[task.ID] = updated
	task.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r taskRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	r.s.deleteTaskLocked(id)
	return nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) ListByTask(_ context.Context, taskID int64) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var comments []domain.Comment
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			comments = append(comments, c)
		}
	}
	slices.SortFunc(comments, func(a, b domain.Comment) int { return cmp.Compare(a.ID, b.ID) })
	return comments, nil
}

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[comment.TaskID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.s.nextComment++
	comment.ID = r.s.nextComment
	comment.CreatedAt = r.s.now()
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r commentRepo) CountByTasks(_ context.Context, taskIDs []int64) (map[int64]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[int64]int, len(taskIDs))
	for _, c := range r.s.comments {
		if slices.Contains(taskIDs, c.TaskID) {
			counts[c.TaskID]++
		}
	}
	return counts, nil
}

func (s *Store) deleteTaskLocked(id int64) {
	delete(s.tasks, id)
	for commentID, c := range s.comments {
		if c.TaskID == id {
			delete(s.comments, commentID)
		}
	}
}

func matches(task domain.Task, f repository.TaskFilter) bool {
	if f.BoardID != 0 && task.BoardID != f.BoardID {
		return false
	}
	if f.AssigneeID != 0 && (task.AssigneeID == nil || *task.AssigneeID != f.AssigneeID) {
		return false
	}
	if f.ReviewerID != 0 && (task.ReviewerID == nil || *task.ReviewerID != f.ReviewerID) {
		return false
	}
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	return true
}

func cloneBoard(b domain.Board) *domain.Board {
	b.Members = slices.Clone(b.Members)
	if b.Members == nil {
		b.Members = []int64{}
	}
	return &b
}

func cloneTask(t domain.Task) domain.Task {
	t.AuthorID = cloneID(t.AuthorID)
	t.AssigneeID = cloneID(t.AssigneeID)
	t.ReviewerID = cloneID(t.ReviewerID)
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
