package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/otpstudio/studio-server-go/internal/errors"
	"github.com/otpstudio/studio-server-go/internal/model"
)

type mockPostRepo struct {
	findAllFunc      func(ctx context.Context) ([]model.Post, error)
	createFunc       func(ctx context.Context, params model.CreatePostParams) (*model.Post, error)
	updateFunc       func(ctx context.Context, id int64, params model.UpdatePostParams) (*model.Post, error)
	deleteByIDFunc   func(ctx context.Context, id int64) ([]model.Post, error)
	deleteBySlugFunc func(ctx context.Context, slug string) ([]model.Post, error)
}

func (m *mockPostRepo) FindAll(ctx context.Context) ([]model.Post, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockPostRepo) FindPublished(ctx context.Context) ([]model.Post, error) {
	return nil, nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	return nil, nil
}

func (m *mockPostRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return nil, nil
}

func (m *mockPostRepo) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockPostRepo) Update(ctx context.Context, id int64, params model.UpdatePostParams) (*model.Post, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *mockPostRepo) DeleteByID(ctx context.Context, id int64) ([]model.Post, error) {
	if m.deleteByIDFunc != nil {
		return m.deleteByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPostRepo) DeleteBySlug(ctx context.Context, slug string) ([]model.Post, error) {
	if m.deleteBySlugFunc != nil {
		return m.deleteBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *mockPostRepo) AddViews(ctx context.Context, slug string, delta int64) error {
	return nil
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestPostService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("neither id nor slug", func(t *testing.T) {
		svc := NewPostService(&mockPostRepo{}, nil)
		_, err := svc.Delete(ctx, DeletePostParams{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
	})

	t.Run("both id and slug", func(t *testing.T) {
		svc := NewPostService(&mockPostRepo{}, nil)
		_, err := svc.Delete(ctx, DeletePostParams{ID: int64Ptr(1), Slug: strPtr("a")})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})

	t.Run("privileged credential not configured", func(t *testing.T) {
		svc := NewPostService(nil, nil)
		_, err := svc.Delete(ctx, DeletePostParams{ID: int64Ptr(1)})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.GetCode(err))
	})

	t.Run("zero rows is not found, not success", func(t *testing.T) {
		repo := &mockPostRepo{
			deleteByIDFunc: func(ctx context.Context, id int64) ([]model.Post, error) {
				return []model.Post{}, nil
			},
		}
		svc := NewPostService(repo, nil)
		_, err := svc.Delete(ctx, DeletePostParams{ID: int64Ptr(42)})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("delete by id returns deleted rows", func(t *testing.T) {
		repo := &mockPostRepo{
			deleteByIDFunc: func(ctx context.Context, id int64) ([]model.Post, error) {
				assert.Equal(t, int64(7), id)
				return []model.Post{{ID: 7, Slug: "gone"}}, nil
			},
		}
		svc := NewPostService(repo, nil)
		deleted, err := svc.Delete(ctx, DeletePostParams{ID: int64Ptr(7)})
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, "gone", deleted[0].Slug)
	})

	t.Run("delete by slug", func(t *testing.T) {
		repo := &mockPostRepo{
			deleteBySlugFunc: func(ctx context.Context, slug string) ([]model.Post, error) {
				assert.Equal(t, "old-post", slug)
				return []model.Post{{ID: 3, Slug: "old-post"}}, nil
			},
		}
		svc := NewPostService(repo, nil)
		deleted, err := svc.Delete(ctx, DeletePostParams{Slug: strPtr("old-post")})
		require.NoError(t, err)
		assert.Len(t, deleted, 1)
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		repo := &mockPostRepo{
			deleteByIDFunc: func(ctx context.Context, id int64) ([]model.Post, error) {
				return nil, errors.New("connection reset")
			},
		}
		svc := NewPostService(repo, nil)
		_, err := svc.Delete(ctx, DeletePostParams{ID: int64Ptr(1)})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})
}
