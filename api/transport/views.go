package transport

import (
	"fmt"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Action names the operation whose response shape is being rendered.
type Action string

const (
	ActionList           Action = "list"
	ActionCreate         Action = "create"
	ActionRetrieve       Action = "retrieve"
	ActionPartialUpdate  Action = "partial_update"
	ActionAssignReviewer Action = "assign_reviewer"
)

type UserSummary struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// Profile is the account as seen by its owner, including the derived handle.
type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
}

type AuthResult struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

type BoardSummary struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	MemberCount        int    `json:"member_count"`
	TicketCount        int    `json:"ticket_count"`
	TasksToDoCount     int    `json:"tasks_to_do_count"`
	TasksHighPrioCount int    `json:"tasks_high_prio_count"`
	OwnerID            int64  `json:"owner_id"`
}

type BoardDetail struct {
	ID                 int64         `json:"id"`
	Title              string        `json:"title"`
	OwnerID            int64         `json:"owner_id"`
	MemberCount        int           `json:"member_count"`
	TicketCount        int           `json:"ticket_count"`
	TasksToDoCount     int           `json:"tasks_to_do_count"`
	TasksHighPrioCount int           `json:"tasks_high_prio_count"`
	Members            []UserSummary `json:"members"`
	Tasks              []TaskInBoard `json:"tasks"`
}

// BoardPatchResult is the reduced board returned after an update: no tasks.
type BoardPatchResult struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	OwnerData   *UserSummary  `json:"owner_data"`
	MembersData []UserSummary `json:"members_data"`
}

type TaskDetail struct {
	ID            int64        `json:"id"`
	Board         int64        `json:"board"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        string       `json:"status"`
	Priority      string       `json:"priority"`
	Assignee      *UserSummary `json:"assignee"`
	Reviewer      *UserSummary `json:"reviewer"`
	DueDate       *string      `json:"due_date"`
	CommentsCount int          `json:"comments_count"`
}

// TaskPatchResult omits the board and the comment count.
type TaskPatchResult struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	Assignee    *UserSummary `json:"assignee"`
	Reviewer    *UserSummary `json:"reviewer"`
	DueDate     *string      `json:"due_date"`
}

// TaskInBoard is a task nested in a board detail, where the board is implied.
type TaskInBoard struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        string       `json:"status"`
	Priority      string       `json:"priority"`
	Assignee      *UserSummary `json:"assignee"`
	Reviewer      *UserSummary `json:"reviewer"`
	DueDate       *string      `json:"due_date"`
	CommentsCount int          `json:"comments_count"`
}

type CommentView struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
}

var boardShapes = map[Action]func(domain.BoardDetails) interface{}{
	ActionList:          func(d domain.BoardDetails) interface{} { return NewBoardSummary(d.Board, d.Stats) },
	ActionCreate:        func(d domain.BoardDetails) interface{} { return NewBoardSummary(d.Board, d.Stats) },
	ActionRetrieve:      func(d domain.BoardDetails) interface{} { return NewBoardDetail(d) },
	ActionPartialUpdate: func(d domain.BoardDetails) interface{} { return NewBoardPatchResult(d) },
}

var taskShapes = map[Action]func(domain.TaskDetails) interface{}{
	ActionList:           func(d domain.TaskDetails) interface{} { return NewTaskDetail(d) },
	ActionCreate:         func(d domain.TaskDetails) interface{} { return NewTaskDetail(d) },
	ActionRetrieve:       func(d domain.TaskDetails) interface{} { return NewTaskDetail(d) },
	ActionAssignReviewer: func(d domain.TaskDetails) interface{} { return NewTaskDetail(d) },
	ActionPartialUpdate:  func(d domain.TaskDetails) interface{} { return NewTaskPatchResult(d) },
}

// BoardView renders a board in the shape registered for action.
func BoardView(action Action, d domain.BoardDetails) (interface{}, error) {
	shape, ok := boardShapes[action]
	if !ok {
		return nil, fmt.Errorf("no board shape for action %q", action)
	}
	return shape(d), nil
}

// BoardViews renders every overview with the shape registered for action.
func BoardViews(action Action, boards []domain.BoardOverview) ([]interface{}, error) {
	out := make([]interface{}, 0, len(boards))
	for _, b := range boards {
		view, err := BoardView(action, domain.BoardDetails{Board: b.Board, Stats: b.Stats})
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// TaskView renders a task in the shape registered for action.
func TaskView(action Action, d domain.TaskDetails) (interface{}, error) {
	shape, ok := taskShapes[action]
	if !ok {
		return nil, fmt.Errorf("no task shape for action %q", action)
	}
	return shape(d), nil
}

func TaskViews(action Action, tasks []domain.TaskDetails) ([]interface{}, error) {
	out := make([]interface{}, 0, len(tasks))
	for _, t := range tasks {
		view, err := TaskView(action, t)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func NewUserSummary(u domain.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Fullname: u.Fullname}
}

func NewProfile(u domain.User) Profile {
	return Profile{ID: u.ID, Email: u.Email, Fullname: u.Fullname, Username: u.Username}
}

func NewAuthResult(token string, u domain.User) AuthResult {
	return AuthResult{Token: token, Fullname: u.Fullname, Email: u.Email, UserID: u.ID}
}

func NewBoardSummary(b domain.Board, stats domain.BoardStats) BoardSummary {
	return BoardSummary{
		ID:                 b.ID,
		Title:              b.Title,
		MemberCount:        stats.MemberCount,
		TicketCount:        stats.TicketCount,
		TasksToDoCount:     stats.TasksToDoCount,
		TasksHighPrioCount: stats.TasksHighPrioCount,
		OwnerID:            b.OwnerID,
	}
}

func NewBoardDetail(d domain.BoardDetails) BoardDetail {
	tasks := make([]TaskInBoard, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		tasks = append(tasks, NewTaskInBoard(t))
	}
	return BoardDetail{
		ID:                 d.Board.ID,
		Title:              d.Board.Title,
		OwnerID:            d.Board.OwnerID,
		MemberCount:        d.Stats.MemberCount,
		TicketCount:        d.Stats.TicketCount,
		TasksToDoCount:     d.Stats.TasksToDoCount,
		TasksHighPrioCount: d.Stats.TasksHighPrioCount,
		Members:            summaries(d.Members),
		Tasks:              tasks,
	}
}

func NewBoardPatchResult(d domain.BoardDetails) BoardPatchResult {
	return BoardPatchResult{
		ID:          d.Board.ID,
		Title:       d.Board.Title,
		OwnerData:   summaryOf(d.Owner),
		MembersData: summaries(d.Members),
	}
}

func NewTaskDetail(d domain.TaskDetails) TaskDetail {
	return TaskDetail{
		ID:            d.Task.ID,
		Board:         d.Task.BoardID,
		Title:         d.Task.Title,
		Description:   d.Task.Description,
		Status:        string(d.Task.Status),
		Priority:      string(d.Task.Priority),
		Assignee:      summaryOf(d.Assignee),
		Reviewer:      summaryOf(d.Reviewer),
		DueDate:       formatDate(d.Task.DueDate),
		CommentsCount: d.CommentsCount,
	}
}

func NewTaskPatchResult(d domain.TaskDetails) TaskPatchResult {
	return TaskPatchResult{
		ID:          d.Task.ID,
		Title:       d.Task.Title,
		Description: d.Task.Description,
		Status:      string(d.Task.Status),
		Priority:    string(d.Task.Priority),
		Assignee:    summaryOf(d.Assignee),
		Reviewer:    summaryOf(d.Reviewer),
		DueDate:     formatDate(d.Task.DueDate),
	}
}

func NewTaskInBoard(d domain.TaskDetails) TaskInBoard {
	return TaskInBoard{
		ID:            d.Task.ID,
		Title:         d.Task.Title,
		Description:   d.Task.Description,
		Status:        string(d.Task.Status),
		Priority:      string(d.Task.Priority),
		Assignee:      summaryOf(d.Assignee),
		Reviewer:      summaryOf(d.Reviewer),
		DueDate:       formatDate(d.Task.DueDate),
		CommentsCount: d.CommentsCount,
	}
}

func NewCommentView(d domain.CommentDetails) CommentView {
	view := CommentView{
		ID:        d.Comment.ID,
		CreatedAt: d.Comment.CreatedAt,
		Content:   d.Comment.Text,
	}
	if d.Author != nil {
		view.Author = d.Author.Fullname
	}
	return view
}

func summaryOf(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	s := NewUserSummary(*u)
	return &s
}

func summaries(users []domain.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserSummary(u))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}
