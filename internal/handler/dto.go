package handler

import (
    "time"

    "github.com/iliyamo/blog-backend/internal/model"
)

// ----- DTOs -----

type registerReq struct {
    Username  string `json:"username"`
    Email     string `json:"email"`
    Password  string `json:"password"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
}
type loginReq struct {
    Username string `json:"username"` // username or email
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

// postReq uses pointers so an omitted field can be told apart from an empty one.
type postReq struct {
    Title   *string `json:"title"`
    Content *string `json:"content"`
}

type userResp struct {
    ID        uint64 `json:"id"`
    Username  string `json:"username"`
    Email     string `json:"email"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    IsStaff   bool   `json:"is_staff"`
}
type authResp struct {
    AccessToken  string   `json:"access_token"`
    RefreshToken string   `json:"refresh_token"`
    User         userResp `json:"user"`
}
type tokensResp struct {
    AccessToken  string `json:"access_token"`
    RefreshToken string `json:"refresh_token"`
}

type postResp struct {
    ID        uint64    `json:"id"`
    Title     string    `json:"title"`
    Content   string    `json:"content"`
    Author    string    `json:"author"`
    AuthorID  uint64    `json:"author_id"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}
type postPageResp struct {
    Posts       []postResp `json:"posts"`
    Page        int        `json:"page"`
    Pages       int        `json:"pages"`
    HasNext     bool       `json:"has_next"`
    HasPrevious bool       `json:"has_previous"`
    TotalPosts  int        `json:"total_posts"`
}

func toUserResp(u *model.User) userResp {
    return userResp{
        ID:        u.ID,
        Username:  u.Username,
        Email:     u.Email,
        FirstName: u.FirstName,
        LastName:  u.LastName,
        IsStaff:   u.IsStaff,
    }
}

func toPostResp(p *model.Post) postResp {
    return postResp{
        ID:        p.ID,
        Title:     p.Title,
        Content:   p.Content,
        Author:    p.AuthorUsername,
        AuthorID:  p.AuthorID,
        CreatedAt: p.CreatedAt,
        UpdatedAt: p.UpdatedAt,
    }
}
