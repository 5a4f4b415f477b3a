package model

import "time"

// Post represents a blog post.  AuthorID is set once at creation and never
// reassigned; only that user may change or delete the post.
// AuthorUsername is populated by reads that join the users table.
type Post struct {
    ID             uint64    // posts.id
    Title          string    // posts.title
    Content        string    // posts.content
    AuthorID       uint64    // posts.author_id
    AuthorUsername string    // users.username of the author
    CreatedAt      time.Time // posts.created_at (immutable)
    UpdatedAt      time.Time // posts.updated_at
}
