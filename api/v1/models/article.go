package models

import "time"

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"` // immutable after creation
	CreatedAt time.Time `json:"created_at"`
}

type ArticleCreate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ArticleUpdate is a merge-patch payload: nil fields are left untouched.
type ArticleUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}
