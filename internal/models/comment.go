package models

import "time"

// Comment represents a note left on a task by a user
type Comment struct {
	ID        string
	TaskID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentDetail is a comment enriched with the author's contact fields.
// Author fields are resolved with a single batched lookup when listing.
type CommentDetail struct {
	Comment
	AuthorName  string
	AuthorEmail string
}
