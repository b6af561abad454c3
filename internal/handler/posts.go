package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	redisclient "github.com/otpstudio/studio-server-go/internal/redis"
	"github.com/otpstudio/studio-server-go/internal/repository"
)

// PostsHandler serves the public read surface of the marketing site. It
// uses the anon-tier repository, so row-level rules decide what is
// visible.
type PostsHandler struct {
	posts repository.PostRepository
	redis *redisclient.Client
}

func NewPostsHandler(posts repository.PostRepository, redisClient *redisclient.Client) *PostsHandler {
	return &PostsHandler{
		posts: posts,
		redis: redisClient,
	}
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.FindPublished(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list posts")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": posts,
		"total": len(posts),
	})
}

func (h *PostsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.posts.FindBySlug(r.Context(), slug)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("failed to load post")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	if post == nil || !post.Published {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}

	// buffered view counter; flushed to the database by the background job
	if h.redis != nil {
		if err := h.redis.Incr(r.Context(), redisclient.ViewCounterKey(slug)).Err(); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("failed to count view")
		}
	}

	writeJSON(w, http.StatusOK, post)
}
