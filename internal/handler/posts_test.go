package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otpstudio/studio-server-go/internal/model"
)

func newPostsRouter(repo *stubPostRepo) http.Handler {
	h := NewPostsHandler(repo, nil)
	r := chi.NewRouter()
	r.Get("/api/posts", h.List)
	r.Get("/api/posts/{slug}", h.GetBySlug)
	return r
}

func TestPostsHandler_List(t *testing.T) {
	repo := &stubPostRepo{
		findPublishedFunc: func(ctx context.Context) ([]model.Post, error) {
			return []model.Post{{ID: 2, Slug: "newer"}, {ID: 1, Slug: "older"}}, nil
		},
	}
	rec := get(t, newPostsRouter(repo), "/api/posts")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []model.Post `json:"items"`
		Total int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "newer", resp.Items[0].Slug)
}

func TestPostsHandler_List_DatabaseError(t *testing.T) {
	repo := &stubPostRepo{
		findPublishedFunc: func(ctx context.Context) ([]model.Post, error) {
			return nil, errors.New("connection refused")
		},
	}
	rec := get(t, newPostsRouter(repo), "/api/posts")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestPostsHandler_GetBySlug(t *testing.T) {
	repo := &stubPostRepo{
		findBySlugFunc: func(ctx context.Context, slug string) (*model.Post, error) {
			switch slug {
			case "visible":
				return &model.Post{ID: 1, Slug: "visible", Published: true}, nil
			case "draft":
				return &model.Post{ID: 2, Slug: "draft", Published: false}, nil
			}
			return nil, nil
		},
	}
	router := newPostsRouter(repo)

	t.Run("published post", func(t *testing.T) {
		rec := get(t, router, "/api/posts/visible")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"slug":"visible"`)
	})

	t.Run("draft is invisible", func(t *testing.T) {
		rec := get(t, router, "/api/posts/draft")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing post", func(t *testing.T) {
		rec := get(t, router, "/api/posts/no-such")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostsHandler_NoRedisStillServes(t *testing.T) {
	// view counting is best-effort; a nil redis client must not break reads
	repo := &stubPostRepo{
		findBySlugFunc: func(ctx context.Context, slug string) (*model.Post, error) {
			return &model.Post{ID: 1, Slug: slug, Published: true}, nil
		},
	}
	rec := get(t, newPostsRouter(repo), "/api/posts/anything")
	assert.Equal(t, http.StatusOK, rec.Code)
}
