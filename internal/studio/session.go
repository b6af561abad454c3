package studio

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/model"
)

// PostStore is the direct, anon-credential view of the data service. The
// server-side repository satisfies it; row-level rules decide what the
// anon tier may actually touch.
type PostStore interface {
	FindAll(ctx context.Context) ([]model.Post, error)
	Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error)
	Update(ctx context.Context, id int64, params model.UpdatePostParams) (*model.Post, error)
	DeleteByID(ctx context.Context, id int64) ([]model.Post, error)
	DeleteBySlug(ctx context.Context, slug string) ([]model.Post, error)
}

// DeleteTarget identifies the post selected for deletion; held only
// between modal-open and confirm.
type DeleteTarget struct {
	ID   *int64
	Slug *string
}

type DeleteResult int

const (
	DeleteSecureSuccess DeleteResult = iota
	DeleteSecureFailure
	DeleteFallbackSuccess
	DeleteFallbackFailure
)

// DeleteOutcome records which path resolved the delete and, for the
// failure variants, why.
type DeleteOutcome struct {
	Result DeleteResult
	Reason error
}

func (o DeleteOutcome) Success() bool {
	return o.Result == DeleteSecureSuccess || o.Result == DeleteFallbackSuccess
}

var ErrNoPendingDelete = errors.New("no pending delete target")

// Options configures a Session.
//
// AllowDeleteFallback reproduces the original panel's behavior of falling
// back to a direct anon-credential delete when the secure route fails.
// That fallback only works where the data service's access rules permit
// it, and if those rules are ever loosened it bypasses the secure proxy
// entirely. It is off unless explicitly requested.
type Options struct {
	AllowDeleteFallback bool
	CacheTTL            time.Duration
}

// Session is the admin panel's client state: the bearer token, the TTL
// cache of the posts list, and the transient delete target. It replaces
// the original's module-level state object; nothing here survives a
// restart.
type Session struct {
	api                 *APIClient
	store               PostStore
	token               string
	cache               *PostsCache
	pendingDelete       *DeleteTarget
	allowDeleteFallback bool
}

func NewSession(api *APIClient, store PostStore, storedToken string, opts Options) *Session {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Session{
		api:                 api,
		store:               store,
		token:               storedToken,
		cache:               NewPostsCache(ttl),
		allowDeleteFallback: opts.AllowDeleteFallback,
	}
}

// Authenticated reports whether a token is held. The token is trusted
// as-is; expiry is discovered when a privileged call is rejected.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) Login(ctx context.Context, passcode string) error {
	token, err := s.api.Login(ctx, passcode)
	if err != nil {
		return err
	}
	s.token = token
	return nil
}

func (s *Session) Logout() {
	s.token = ""
	s.cache.Invalidate()
}

// FetchPosts returns the post list, served from cache when it is still
// fresh and force is false. A cache hit has no failure path since no
// call is made.
func (s *Session) FetchPosts(ctx context.Context, force bool) ([]model.Post, error) {
	return s.cache.GetOrRefresh(ctx, force, s.store.FindAll)
}

// LastFetchAt exposes the cache timestamp.
func (s *Session) LastFetchAt() time.Time {
	return s.cache.LastFetchAt()
}

// BeginDelete holds the target while the confirmation modal is open.
func (s *Session) BeginDelete(target DeleteTarget) {
	s.pendingDelete = &target
}

func (s *Session) PendingDelete() *DeleteTarget {
	return s.pendingDelete
}

// ConfirmDelete attempts the secure proxy route first and, only when the
// session allows it, falls through to a direct delete with the anon
// credential. The pending target is cleared no matter how the attempt
// resolves; any success force-refreshes the cache.
func (s *Session) ConfirmDelete(ctx context.Context) DeleteOutcome {
	target := s.pendingDelete
	defer func() { s.pendingDelete = nil }()

	if target == nil {
		return DeleteOutcome{Result: DeleteSecureFailure, Reason: ErrNoPendingDelete}
	}

	secureErr := s.api.DeletePost(ctx, s.token, *target)
	if secureErr == nil {
		s.forceRefresh(ctx)
		return DeleteOutcome{Result: DeleteSecureSuccess}
	}

	if !s.allowDeleteFallback {
		return DeleteOutcome{Result: DeleteSecureFailure, Reason: secureErr}
	}

	log.Warn().Err(secureErr).Msg("secure delete failed, attempting direct fallback")

	var fallbackErr error
	switch {
	case target.ID != nil:
		_, fallbackErr = s.store.DeleteByID(ctx, *target.ID)
	case target.Slug != nil:
		_, fallbackErr = s.store.DeleteBySlug(ctx, *target.Slug)
	default:
		fallbackErr = ErrNoPendingDelete
	}

	if fallbackErr != nil {
		// the fallback's error is what reaches the operator
		return DeleteOutcome{Result: DeleteFallbackFailure, Reason: fallbackErr}
	}

	// a zero-row delete is indistinguishable from success on this path
	s.forceRefresh(ctx)
	return DeleteOutcome{Result: DeleteFallbackSuccess}
}

// PostForm is the admin panel's create/update form model. A held ID means
// update; absence means create.
type PostForm struct {
	ID        *int64
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

// SubmitPostForm creates or updates a post through the direct store. On
// success the cache is force-refreshed; on failure the caller keeps the
// form contents for retry.
func (s *Session) SubmitPostForm(ctx context.Context, form PostForm) (*model.Post, error) {
	var post *model.Post
	var err error

	if form.ID == nil {
		post, err = s.store.Create(ctx, model.CreatePostParams{
			Slug:      form.Slug,
			Title:     form.Title,
			Content:   form.Content,
			Excerpt:   form.Excerpt,
			Category:  form.Category,
			Author:    form.Author,
			ImageURL:  form.ImageURL,
			Published: form.Published,
			SEOTitle:  form.SEOTitle,
			SEODesc:   form.SEODesc,
		})
	} else {
		post, err = s.store.Update(ctx, *form.ID, model.UpdatePostParams{
			Slug:      &form.Slug,
			Title:     &form.Title,
			Content:   &form.Content,
			Excerpt:   &form.Excerpt,
			Category:  &form.Category,
			Author:    &form.Author,
			ImageURL:  form.ImageURL,
			Published: &form.Published,
			SEOTitle:  form.SEOTitle,
			SEODesc:   form.SEODesc,
		})
	}

	if err != nil {
		return nil, err
	}

	s.forceRefresh(ctx)
	return post, nil
}

func (s *Session) forceRefresh(ctx context.Context) {
	if _, err := s.FetchPosts(ctx, true); err != nil {
		log.Warn().Err(err).Msg("post-mutation cache refresh failed")
	}
}
