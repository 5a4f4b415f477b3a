// Package queue defines post lifecycle events and moves them over RabbitMQ.
package queue

import "time"

// Event types.
const (
    PostCreated = "post.created"
    PostUpdated = "post.updated"
    PostDeleted = "post.deleted"
)

// PostEvent is published after a post is created, updated or deleted.  It
// carries enough for a consumer to log the change without querying the
// primary database.
type PostEvent struct {
    Type       string    `json:"type"`
    PostID     uint64    `json:"post_id"`
    AuthorID   uint64    `json:"author_id"`
    Title      string    `json:"title"`
    OccurredAt time.Time `json:"occurred_at"`
}
