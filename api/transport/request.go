package transport

import (
	"bytes"

	"github.com/bytedance/sonic"

	"github.com/fastygo/taskboard/domain"
)

type RegistrationRequest struct {
	Fullname         string `json:"fullname" validate:"required,max=150"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required"`
	RepeatedPassword string `json:"repeated_password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailCheckRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type BoardCreateRequest struct {
	Title   string  `json:"title" validate:"required,max=50"`
	Members []int64 `json:"members"`
}

type BoardPatchRequest struct {
	Title   *string  `json:"title" validate:"omitempty,min=1,max=50"`
	Members *[]int64 `json:"members"`
}

type TaskCreateRequest struct {
	Board       int64   `json:"board" validate:"required"`
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=to-do in-progress reviewing done"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	AssigneeID  *int64  `json:"assignee_id"`
	ReviewerID  *int64  `json:"reviewer_id"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type TaskPatchRequest struct {
	Board       *int64           `json:"board"`
	Title       *string          `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" validate:"omitempty,oneof=to-do in-progress reviewing done"`
	Priority    *string          `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	AssigneeID  Nullable[int64]  `json:"assignee_id"`
	ReviewerID  Nullable[int64]  `json:"reviewer_id"`
	DueDate     Nullable[string] `json:"due_date"`
}

type ReviewerAssignRequest struct {
	ReviewerID *int64 `json:"reviewer_id"`
}

type CommentCreateRequest struct {
	Content string `json:"content" validate:"required"`
}

// Nullable distinguishes an absent JSON field from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Bind decodes a JSON body into dst and validates it.
func Bind(body []byte, dst interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := sonic.ConfigStd.Unmarshal(body, dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	return Validate(dst)
}
