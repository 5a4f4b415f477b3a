// Package policy decides whether an authenticated user may mutate a post.
package policy

import (
	"context"
	"errors"

	"github.com/iliyamo/blog-backend/internal/model"
)

// ErrForbidden is returned when the actor is not the post's author.
// Handlers translate it into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// PostFinder looks a post up by id, returning repository.ErrPostNotFound
// when it does not exist.
type PostFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.Post, error)
}

// Authorize permits a mutation iff actor authored post.
func Authorize(actor *model.User, post *model.Post) error {
	if actor == nil || post == nil || post.AuthorID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// LoadOwned fetches the post and then checks ownership, so a missing post is
// reported as not found before any ownership verdict.
func LoadOwned(ctx context.Context, posts PostFinder, id uint64, actor *model.User) (*model.Post, error) {
	p, err := posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, p); err != nil {
		return nil, err
	}
	return p, nil
}
