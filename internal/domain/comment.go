package domain

import "time"

// Comment представляет комментарий к задаче
type Comment struct {
	ID         string     `json:"id"`
	WorkTaskID string     `json:"workTaskId"`
	AuthorID   string     `json:"authorId"`
	Content    string     `json:"content"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}
