package domain

import "time"

// Comment is a note left on a task.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	AuthorID  *int64    `json:"author_id,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentDetails is a comment with its author resolved.
type CommentDetails struct {
	Comment Comment
	Author  *User
}
