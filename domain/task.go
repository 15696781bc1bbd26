package domain

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "to-do"
	StatusInProgress TaskStatus = "in-progress"
	StatusReviewing  TaskStatus = "reviewing"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReviewing, StatusDone:
		return true
	}
	return false
}

// TaskPriority ranks how urgent a task is.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// DateLayout is the wire format of task due dates.
const DateLayout = "2006-01-02"

// Task represents a unit of work on a board.
type Task struct {
	ID          int64        `json:"id"`
	BoardID     int64        `json:"board_id"`
	AuthorID    *int64       `json:"author_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	AssigneeID  *int64       `json:"assignee_id,omitempty"`
	ReviewerID  *int64       `json:"reviewer_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsAuthor reports whether userID created the task.
func (t *Task) IsAuthor(userID int64) bool {
	return t != nil && t.AuthorID != nil && *t.AuthorID == userID
}

// ApplyDefaults fills status and priority when the caller left them empty.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusToDo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// TaskDetails is a task with its related users resolved and its comment count.
type TaskDetails struct {
	Task          Task
	Assignee      *User
	Reviewer      *User
	CommentsCount int
}
