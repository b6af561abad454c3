package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	apperrors "github.com/otpstudio/studio-server-go/internal/errors"
	"github.com/otpstudio/studio-server-go/internal/model"
	"github.com/otpstudio/studio-server-go/internal/repository"
	"github.com/otpstudio/studio-server-go/internal/sse"
)

type DeletePostParams struct {
	ID   *int64
	Slug *string
}

// PostService performs the privileged post operations. It holds the
// repository bound to the service-tier database credential; if that
// credential was never configured the repo is nil and every call fails
// fast with a misconfiguration error before touching anything.
type PostService struct {
	privileged repository.PostRepository
	broker     *sse.Broker
}

func NewPostService(privileged repository.PostRepository, broker *sse.Broker) *PostService {
	return &PostService{
		privileged: privileged,
		broker:     broker,
	}
}

// Delete removes the post matching id or slug (exactly one must be set)
// and returns the deleted rows. Zero matched rows is a NotFound, not a
// success: the remove is idempotent at the data level but not at the
// HTTP-status level.
func (s *PostService) Delete(ctx context.Context, params DeletePostParams) ([]model.Post, error) {
	if s.privileged == nil {
		return nil, apperrors.Configuration("server misconfiguration")
	}

	if params.ID == nil && params.Slug == nil {
		return nil, apperrors.MissingRequired("id or slug")
	}
	if params.ID != nil && params.Slug != nil {
		return nil, apperrors.ValidationError("provide either id or slug, not both")
	}

	var deleted []model.Post
	var err error

	if params.ID != nil {
		deleted, err = s.privileged.DeleteByID(ctx, *params.ID)
	} else {
		deleted, err = s.privileged.DeleteBySlug(ctx, *params.Slug)
	}

	if err != nil {
		return nil, apperrors.Database(err)
	}

	if len(deleted) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "not found or already deleted")
	}

	for _, post := range deleted {
		s.publishEvent(ctx, sse.EventPostDeleted, post)
	}

	return deleted, nil
}

func (s *PostService) publishEvent(ctx context.Context, eventType string, post model.Post) {
	if s.broker == nil {
		return
	}

	data, err := json.Marshal(map[string]any{
		"id":   post.ID,
		"slug": post.Slug,
	})
	if err != nil {
		return
	}

	if err := s.broker.Publish(ctx, sse.Event{Type: eventType, Data: data}); err != nil {
		log.Warn().Err(err).Str("slug", post.Slug).Msg("failed to publish post event")
	}
}
