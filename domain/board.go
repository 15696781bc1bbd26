package domain

import (
	"slices"
	"time"
)

// Board is a titled container of tasks owned by one user and shared with members.
type Board struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	OwnerID   int64     `json:"owner_id"`
	Members   []int64   `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMember reports whether userID is listed as a member. The owner is not implicitly a member.
func (b *Board) HasMember(userID int64) bool {
	return b != nil && slices.Contains(b.Members, userID)
}

// IsOwner reports whether userID owns the board.
func (b *Board) IsOwner(userID int64) bool {
	return b != nil && b.OwnerID == userID
}

// SetMembers replaces the member set, dropping duplicates while keeping first-seen order.
func (b *Board) SetMembers(ids []int64) {
	b.Members = UniqueIDs(ids)
}

// UniqueIDs returns ids without duplicates, preserving order.
func UniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// BoardStats holds the derived counts shown with every board representation.
type BoardStats struct {
	MemberCount        int `json:"member_count"`
	TicketCount        int `json:"ticket_count"`
	TasksToDoCount     int `json:"tasks_to_do_count"`
	TasksHighPrioCount int `json:"tasks_high_prio_count"`
}

// ComputeBoardStats derives the counts of a board from its member set and the tasks
// referencing it. Tasks belonging to other boards are ignored.
func ComputeBoardStats(board *Board, tasks []Task) BoardStats {
	if board == nil {
		return BoardStats{}
	}
	stats := BoardStats{MemberCount: len(UniqueIDs(board.Members))}
	for _, t := range tasks {
		if t.BoardID != board.ID {
			continue
		}
		stats.TicketCount++
		if t.Status == StatusToDo {
			stats.TasksToDoCount++
		}
		if t.Priority == PriorityHigh {
			stats.TasksHighPrioCount++
		}
	}
	return stats
}

// BoardDetails bundles a board with the related records a detail view needs.
type BoardDetails struct {
	Board   Board
	Owner   *User
	Members []User
	Tasks   []TaskDetails
	Stats   BoardStats
}

// BoardOverview pairs a board with its derived counts for list views.
type BoardOverview struct {
	Board Board
	Stats BoardStats
}
