// Package cachetest starts an in-memory redis for package tests.
package cachetest

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/yashkumarverma/cronx/src/utils"
	"github.com/yashkumarverma/cronx/src/utils/cache"
)

// New returns a connected client backed by a fresh miniredis server. Both
// are shut down when the test ends.
func New(t testing.TB) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)

	cfg, err := utils.ParseConfig(map[string]string{
		"CACHE_CLUSTER_URL": server.Host(),
		"CACHE_PORT":        server.Port(),
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	client, err := cache.NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}
