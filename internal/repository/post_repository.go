// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Post repository: CRUD by primary key plus a
// newest-first paginated listing.  Reads join users so callers receive the
// author's username alongside the post.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"
	"fmt"

	"github.com/iliyamo/blog-backend/internal/model"
)

const postSelect = `SELECT p.id, p.title, p.content, p.author_id, u.username, p.created_at, p.updated_at
	FROM posts p JOIN users u ON u.id = p.author_id`

// PostRepo encapsulates all database queries related to posts.
type PostRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewPostRepo constructs a PostRepo with the provided DB handle.
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

// Create inserts a new post.  On success the post's ID and timestamp fields
// are populated from the stored row.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	const qInsert = "INSERT INTO posts (title, content, author_id) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, p.Title, p.Content, p.AuthorID)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// GetByID fetches a post by its ID.  It returns ErrPostNotFound if no row
// is found.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	err := r.db.QueryRowContext(ctx, postSelect+" WHERE p.id = ?", id).
		Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorUsername, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

// Count returns the total number of posts.
func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// List returns up to limit posts starting at offset, newest first.  Ties on
// created_at are broken by id so pages are stable.
func (r *PostRepo) List(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		postSelect+" ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Post, 0, limit)
	for rows.Next() {
		p := new(model.Post)
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorUsername, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

// Update replaces title and content of the post.  Ownership is the caller's
// concern.  It returns ErrPostNotFound when no row matched.
func (r *PostRepo) Update(ctx context.Context, id uint64, title, content string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET title = ?, content = ? WHERE id = ?", title, content, id)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return affectedOne(res)
}

// Delete removes the post.  It returns ErrPostNotFound when no row matched.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}
