package studio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otpstudio/studio-server-go/internal/model"
)

type fakeStore struct {
	posts        []model.Post
	findAllCalls int
	deleteErr    error
	deletedIDs   []int64
	createErr    error
	updateErr    error
}

func (f *fakeStore) FindAll(ctx context.Context) ([]model.Post, error) {
	f.findAllCalls++
	return f.posts, nil
}

func (f *fakeStore) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	post := model.Post{ID: int64(len(f.posts) + 1), Slug: params.Slug, Title: params.Title}
	f.posts = append(f.posts, post)
	return &post, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, params model.UpdatePostParams) (*model.Post, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &model.Post{ID: id}, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id int64) ([]model.Post, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil, nil
}

func (f *fakeStore) DeleteBySlug(ctx context.Context, slug string) ([]model.Post, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return nil, nil
}

func newDeleteServer(t *testing.T, status int, body map[string]any) *APIClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/delete-post", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return NewAPIClient(server.URL)
}

func TestSession_ConfirmDelete_SecureSuccess(t *testing.T) {
	api := newDeleteServer(t, http.StatusOK, map[string]any{"success": true, "message": "deleted 1 post(s)"})
	store := &fakeStore{}
	session := NewSession(api, store, "token-1", Options{})

	session.BeginDelete(DeleteTarget{ID: int64Ptr(7)})
	require.NotNil(t, session.PendingDelete())

	outcome := session.ConfirmDelete(context.Background())

	assert.Equal(t, DeleteSecureSuccess, outcome.Result)
	assert.True(t, outcome.Success())
	assert.Nil(t, session.PendingDelete(), "pending target cleared after resolve")
	assert.Empty(t, store.deletedIDs, "fallback path must not run")
	assert.Equal(t, 1, store.findAllCalls, "cache force-refreshed after success")
}

func TestSession_ConfirmDelete_SecureFailureNoFallback(t *testing.T) {
	api := newDeleteServer(t, http.StatusNotFound, map[string]any{"success": false, "message": "not found or already deleted"})
	store := &fakeStore{}
	session := NewSession(api, store, "token-1", Options{})

	session.BeginDelete(DeleteTarget{ID: int64Ptr(7)})
	outcome := session.ConfirmDelete(context.Background())

	assert.Equal(t, DeleteSecureFailure, outcome.Result)
	assert.False(t, outcome.Success())
	require.Error(t, outcome.Reason)
	assert.Contains(t, outcome.Reason.Error(), "not found or already deleted")
	assert.Nil(t, session.PendingDelete())
	assert.Empty(t, store.deletedIDs, "fallback is opt-in")
	assert.Equal(t, 0, store.findAllCalls, "no refresh after failure")
}

func TestSession_ConfirmDelete_FallbackSuccess(t *testing.T) {
	api := newDeleteServer(t, http.StatusForbidden, map[string]any{"success": false, "message": "Invalid or expired token"})
	store := &fakeStore{}
	session := NewSession(api, store, "token-1", Options{AllowDeleteFallback: true})

	session.BeginDelete(DeleteTarget{ID: int64Ptr(7)})
	outcome := session.ConfirmDelete(context.Background())

	assert.Equal(t, DeleteFallbackSuccess, outcome.Result)
	assert.True(t, outcome.Success())
	assert.Equal(t, []int64{7}, store.deletedIDs)
	assert.Nil(t, session.PendingDelete())
	assert.Equal(t, 1, store.findAllCalls, "cache force-refreshed after fallback success")
}

func TestSession_ConfirmDelete_BothPathsFail(t *testing.T) {
	api := newDeleteServer(t, http.StatusInternalServerError, map[string]any{"success": false, "message": "Database error"})
	store := &fakeStore{deleteErr: errors.New("permission denied for table posts")}
	session := NewSession(api, store, "token-1", Options{AllowDeleteFallback: true})

	session.BeginDelete(DeleteTarget{ID: int64Ptr(7)})
	outcome := session.ConfirmDelete(context.Background())

	assert.Equal(t, DeleteFallbackFailure, outcome.Result)
	assert.False(t, outcome.Success())
	// the fallback's error, not the secure path's, reaches the operator
	assert.Contains(t, outcome.Reason.Error(), "permission denied")
	assert.Nil(t, session.PendingDelete())
	assert.Equal(t, 0, store.findAllCalls)
}

func TestSession_ConfirmDelete_NetworkErrorTriggersFallback(t *testing.T) {
	// server that is immediately closed: every call is a transport error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	api := NewAPIClient(server.URL)
	server.Close()

	store := &fakeStore{}
	session := NewSession(api, store, "token-1", Options{AllowDeleteFallback: true})

	session.BeginDelete(DeleteTarget{ID: int64Ptr(9)})
	outcome := session.ConfirmDelete(context.Background())

	assert.Equal(t, DeleteFallbackSuccess, outcome.Result)
	assert.Equal(t, []int64{9}, store.deletedIDs)
}

func TestSession_ConfirmDelete_NoPendingTarget(t *testing.T) {
	api := NewAPIClient("http://localhost:0")
	session := NewSession(api, &fakeStore{}, "token-1", Options{})

	outcome := session.ConfirmDelete(context.Background())
	assert.Equal(t, DeleteSecureFailure, outcome.Result)
	assert.ErrorIs(t, outcome.Reason, ErrNoPendingDelete)
}

func TestSession_FetchPosts_CacheWindow(t *testing.T) {
	store := &fakeStore{posts: []model.Post{{ID: 1, Slug: "a"}}}
	session := NewSession(nil, store, "token-1", Options{})

	ctx := context.Background()

	posts, err := session.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, store.findAllCalls)

	// within the TTL: no second store query
	_, err = session.FetchPosts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.findAllCalls)

	// force always queries
	_, err = session.FetchPosts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, store.findAllCalls)
}

func TestSession_SubmitPostForm(t *testing.T) {
	ctx := context.Background()

	t.Run("create when no id held", func(t *testing.T) {
		store := &fakeStore{}
		session := NewSession(nil, store, "token-1", Options{})

		post, err := session.SubmitPostForm(ctx, PostForm{Slug: "new-post", Title: "New"})
		require.NoError(t, err)
		assert.Equal(t, "new-post", post.Slug)
		assert.Equal(t, 1, store.findAllCalls, "cache force-refreshed after create")
	})

	t.Run("update when id held", func(t *testing.T) {
		store := &fakeStore{}
		session := NewSession(nil, store, "token-1", Options{})

		post, err := session.SubmitPostForm(ctx, PostForm{ID: int64Ptr(5), Title: "Edited"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), post.ID)
		assert.Equal(t, 1, store.findAllCalls)
	})

	t.Run("failure leaves cache untouched", func(t *testing.T) {
		store := &fakeStore{createErr: errors.New("duplicate key value violates unique constraint")}
		session := NewSession(nil, store, "token-1", Options{})

		_, err := session.SubmitPostForm(ctx, PostForm{Slug: "dup"})
		require.Error(t, err)
		assert.Equal(t, 0, store.findAllCalls)
		assert.True(t, session.LastFetchAt().IsZero())
	})
}

func TestSession_Bootstrap(t *testing.T) {
	session := NewSession(nil, &fakeStore{}, "stored-token", Options{})
	assert.True(t, session.Authenticated())

	session.Logout()
	assert.False(t, session.Authenticated())
}

func int64Ptr(v int64) *int64 { return &v }
