package model

import (
	"time"
)

type Post struct {
	ID        int64     `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Excerpt   string    `db:"excerpt" json:"excerpt"`
	Category  string    `db:"category" json:"category"`
	Author    string    `db:"author" json:"author"`
	ImageURL  *string   `db:"image_url" json:"imageUrl,omitempty"`
	Views     int64     `db:"views" json:"views"`
	Published bool      `db:"published" json:"published"`
	SEOTitle  *string   `db:"seo_title" json:"seoTitle,omitempty"`
	SEODesc   *string   `db:"seo_desc" json:"seoDesc,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreatePostParams struct {
	Slug      string
	Title     string
	Content   string
	Excerpt   string
	Category  string
	Author    string
	ImageURL  *string
	Published bool
	SEOTitle  *string
	SEODesc   *string
}

type UpdatePostParams struct {
	Slug      *string
	Title     *string
	Content   *string
	Excerpt   *string
	Category  *string
	Author    *string
	ImageURL  *string
	Published *bool
	SEOTitle  *string
	SEODesc   *string
}
