package domain

// Action names an operation checked by the access rules.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	errBoardMemberRequired = NewError(ErrCodeForbidden, "Forbidden. The user must be either a board member or the owner to access this resource.")
	errBoardOwnerRequired  = NewError(ErrCodeForbidden, "Forbidden. Only the board owner can delete this board.")
	errTaskMemberRequired  = NewError(ErrCodeForbidden, "Forbidden. The user must be a member of the board to modify its tasks.")
	errTaskDeleteDenied    = NewError(ErrCodeForbidden, "Forbidden. Only the task author or the board owner can delete this task.")
	errUnsupportedAction   = NewError(ErrCodeForbidden, "Forbidden. Unsupported action.")
)

// AuthorizeBoard decides whether requester may perform action on board.
// A nil requester is never allowed and yields ErrNotAuthenticated.
func AuthorizeBoard(requester *User, action Action, board *Board) error {
	if requester == nil {
		return ErrNotAuthenticated
	}
	switch action {
	case ActionRead, ActionUpdate:
		if board.IsOwner(requester.ID) || board.HasMember(requester.ID) {
			return nil
		}
		return errBoardMemberRequired
	case ActionDelete:
		if board.IsOwner(requester.ID) {
			return nil
		}
		return errBoardOwnerRequired
	default:
		return errUnsupportedAction
	}
}

// TaskPolicy evaluates access to tasks and to the comments attached to them.
type TaskPolicy struct {
	// OwnerActsAsMember lets the board owner create and update tasks without being listed
	// among the members.
	OwnerActsAsMember bool
}

// Authorize decides whether requester may perform action on task, whose owning board
// must be supplied. For ActionCreate the task only needs its BoardID set.
func (p TaskPolicy) Authorize(requester *User, action Action, task *Task, board *Board) error {
	if action == ActionRead {
		return nil
	}
	if requester == nil {
		return ErrNotAuthenticated
	}
	switch action {
	case ActionCreate, ActionUpdate:
		if p.isMember(requester, board) {
			return nil
		}
		return errTaskMemberRequired
	case ActionDelete:
		if task.IsAuthor(requester.ID) || board.IsOwner(requester.ID) {
			return nil
		}
		return errTaskDeleteDenied
	default:
		return errUnsupportedAction
	}
}

// AuthorizeComment applies the task create rule to comment creation on a board.
func (p TaskPolicy) AuthorizeComment(requester *User, board *Board) error {
	if requester == nil {
		return ErrNotAuthenticated
	}
	if p.isMember(requester, board) {
		return nil
	}
	return errTaskMemberRequired
}

func (p TaskPolicy) isMember(requester *User, board *Board) bool {
	if board.HasMember(requester.ID) {
		return true
	}
	return p.OwnerActsAsMember && board.IsOwner(requester.ID)
}
