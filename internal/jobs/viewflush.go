package jobs

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/otpstudio/studio-server-go/internal/redis"
	"github.com/otpstudio/studio-server-go/internal/repository"
)

// ViewFlushJob periodically moves redis-buffered page view counters into
// the posts table. Public reads only INCR a redis key, so a flush that
// fails leaves the counters in place for the next pass.
type ViewFlushJob struct {
	redis    *redisclient.Client
	posts    repository.PostRepository
	interval time.Duration
	done     chan struct{}
}

func NewViewFlushJob(redisClient *redisclient.Client, posts repository.PostRepository, interval time.Duration) *ViewFlushJob {
	return &ViewFlushJob{
		redis:    redisClient,
		posts:    posts,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *ViewFlushJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("view flush job started")
}

func (j *ViewFlushJob) Stop() {
	close(j.done)
	log.Info().Msg("view flush job stopped")
}

func (j *ViewFlushJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.Flush()
		}
	}
}

// Flush drains every buffered counter. GETDEL keeps the increment window
// small: views arriving between the read and the database write land in a
// fresh counter and survive to the next pass.
func (j *ViewFlushJob) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	keys, err := j.redis.Keys(ctx, redisclient.ViewCounterPattern).Result()
	if err != nil {
		log.Error().Err(err).Msg("failed to list view counters")
		return
	}

	flushed := 0
	for _, key := range keys {
		raw, err := j.redis.GetDel(ctx, key).Result()
		if err != nil {
			continue
		}

		delta, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || delta <= 0 {
			continue
		}

		slug := strings.TrimPrefix(key, "views:")
		if err := j.posts.AddViews(ctx, slug, delta); err != nil {
			log.Error().Err(err).Str("slug", slug).Msg("failed to flush views")
			// put the counter back so the views are not lost
			j.redis.IncrBy(ctx, key, delta)
			continue
		}
		flushed++
	}

	if flushed > 0 {
		log.Info().Int("posts", flushed).Msg("flushed view counters")
	}
}
