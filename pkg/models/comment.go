package models

import "time"

// Comment is a user comment on an event.
type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentProjection is the comment shape carried by broadcast messages.
type CommentProjection struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project returns the broadcast projection of the comment.
func (c *Comment) Project() CommentProjection {
	return CommentProjection{
		ID:        c.ID,
		EventID:   c.EventID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
