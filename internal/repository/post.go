package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/otpstudio/studio-server-go/internal/model"
)

type PostRepository interface {
	FindAll(ctx context.Context) ([]model.Post, error)
	FindPublished(ctx context.Context) ([]model.Post, error)
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)
	Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error)
	Update(ctx context.Context, id int64, params model.UpdatePostParams) (*model.Post, error)
	DeleteByID(ctx context.Context, id int64) ([]model.Post, error)
	DeleteBySlug(ctx context.Context, slug string) ([]model.Post, error)
	AddViews(ctx context.Context, slug string, delta int64) error
}

type postRepo struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) FindAll(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	err := r.db.SelectContext(ctx, &posts, `
		SELECT * FROM posts ORDER BY created_at DESC
	`)
	return posts, err
}

func (r *postRepo) FindPublished(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	err := r.db.SelectContext(ctx, &posts, `
		SELECT * FROM posts WHERE published = true ORDER BY created_at DESC
	`)
	return posts, err
}

func (r *postRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `SELECT * FROM posts WHERE id = $1`, id)
	return HandleNotFound(&post, err)
}

func (r *postRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `SELECT * FROM posts WHERE slug = $1`, slug)
	return HandleNotFound(&post, err)
}

func (r *postRepo) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `
		INSERT INTO posts (slug, title, content, excerpt, category, author, image_url, published, seo_title, seo_desc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *
	`, params.Slug, params.Title, params.Content, params.Excerpt, params.Category,
		params.Author, params.ImageURL, params.Published, params.SEOTitle, params.SEODesc)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepo) Update(ctx context.Context, id int64, params model.UpdatePostParams) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `
		UPDATE posts SET
			slug      = COALESCE($2, slug),
			title     = COALESCE($3, title),
			content   = COALESCE($4, content),
			excerpt   = COALESCE($5, excerpt),
			category  = COALESCE($6, category),
			author    = COALESCE($7, author),
			image_url = COALESCE($8, image_url),
			published = COALESCE($9, published),
			seo_title = COALESCE($10, seo_title),
			seo_desc  = COALESCE($11, seo_desc)
		WHERE id = $1
		RETURNING *
	`, id, params.Slug, params.Title, params.Content, params.Excerpt, params.Category,
		params.Author, params.ImageURL, params.Published, params.SEOTitle, params.SEODesc)
	return HandleNotFound(&post, err)
}

func (r *postRepo) DeleteByID(ctx context.Context, id int64) ([]model.Post, error) {
	deleted := []model.Post{}
	err := r.db.SelectContext(ctx, &deleted, `
		DELETE FROM posts WHERE id = $1 RETURNING *
	`, id)
	return deleted, err
}

func (r *postRepo) DeleteBySlug(ctx context.Context, slug string) ([]model.Post, error) {
	deleted := []model.Post{}
	err := r.db.SelectContext(ctx, &deleted, `
		DELETE FROM posts WHERE slug = $1 RETURNING *
	`, slug)
	return deleted, err
}

func (r *postRepo) AddViews(ctx context.Context, slug string, delta int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE posts SET views = views + $2 WHERE slug = $1
	`, slug, delta)
	return err
}
