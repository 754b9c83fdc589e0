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

// PresenceKey is the sorted set holding heartbeat timestamps per resource.
func PresenceKey(resourceID string) string {
	return fmt.Sprintf("presence:%s", resourceID)
}

// SessionChannel carries push notifications for one whiteboard session.
func SessionChannel(sessionID string) string {
	return fmt.Sprintf("session-events:%s", sessionID)
}
