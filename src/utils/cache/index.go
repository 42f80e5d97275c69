package cache

import (
	"context"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
	"github.com/yashkumarverma/cronx/src/utils"
)

type Client struct {
	client *redis.Client
}

func (c *Client) GetClient() *redis.Client {
	return c.client
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}

// NewClient dials the configured redis server and verifies the connection.
func NewClient(ctx context.Context, config *utils.Config) (*Client, error) {
	opts, err := redisOptions(config)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Test the connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		client: rdb,
	}, nil
}

// redisOptions renders the config as a redis URL so the scheme selects
// TLS the same way redis-cli does.
func redisOptions(config *utils.Config) (*redis.Options, error) {
	u := url.URL{
		Scheme: config.CacheURLScheme,
		Host:   config.CacheAddr(),
		Path:   "/0",
	}
	if config.CacheUsername != "" || config.CachePassword != "" {
		u.User = url.UserPassword(config.CacheUsername, config.CachePassword)
	}

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to build Redis options: %w", err)
	}
	if opts.TLSConfig != nil && config.CacheTLSDomain != "" {
		opts.TLSConfig.ServerName = config.CacheTLSDomain
	}
	return opts, nil
}
