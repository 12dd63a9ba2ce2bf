package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskmatch/internal/adapters/memory"
	"riskmatch/internal/config"
)

func TestRankCacheInProcess(t *testing.T) {
	cache, closer, err := RankCache(context.Background(), config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &memory.RankCache{}, cache)
	assert.NoError(t, closer.Close())
}

func TestRankCacheUnreachableRedis(t *testing.T) {
	_, _, err := RankCache(context.Background(), config.Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestServeRequiresDatabase(t *testing.T) {
	err := Serve(context.Background(), config.Config{}, nil)
	assert.ErrorIs(t, err, config.ErrNoDatabase)
}

func TestListenFailureReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}
	err = listen(context.Background(), srv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}

func TestListenStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() { done <- listen(ctx, srv) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listen did not return after cancel")
	}
}
