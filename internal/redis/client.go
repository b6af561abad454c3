package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// PostEventsChannel is the pub/sub channel carrying post change events to
// connected admin panels.
const PostEventsChannel = "events:posts"

// ViewCounterKey buffers page views for a post until the flush job moves
// them into the database.
func ViewCounterKey(slug string) string {
	return fmt.Sprintf("views:%s", slug)
}

const ViewCounterPattern = "views:*"
