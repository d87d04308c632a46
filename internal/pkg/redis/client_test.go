package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/config"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
	require.Len(t, mock.expireCalls, 1)
	assert.Equal(t, time.Minute, mock.expireCalls[0].ttl)

	allowed, count, err = client.FixedWindowAllow(ctx, "login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(2), count)
	assert.Len(t, mock.expireCalls, 1, "expire is only set on the first hit")

	allowed, _, err = client.FixedWindowAllow(ctx, "login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, client.Reset(ctx, "login:10.0.0.1"))
	allowed, count, err = client.FixedWindowAllow(ctx, "login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
}

func TestFixedWindowAllowPropagatesErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.incrErr = errors.New("connection refused")
	client := &Client{store: mock}

	allowed, _, err := client.FixedWindowAllow(context.Background(), "scope", 5, time.Second)
	require.Error(t, err)
	assert.False(t, allowed)
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	_, _, err := client.FixedWindowAllow(context.Background(), "scope", 1, time.Second)
	require.Error(t, err)
	require.Error(t, client.Ping(context.Background()))
	require.NoError(t, client.Close())
}

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "uniportal:rate_limit:scope", (&Client{}).RateLimitKey("scope"))
	assert.Equal(t, "campus:rate_limit:eligibility:1.2.3.4", (&Client{namespace: "campus"}).RateLimitKey(" eligibility:1.2.3.4 "))
	assert.Equal(t, "uniportal:rate_limit", (&Client{}).RateLimitKey(""))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	_, err := optionsFromConfig(cfg)
	require.Error(t, err)

	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.PoolSize = 7
	cfg.Redis.DialTimeout = "2s"
	opts, err := optionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)

	cfg.Redis.URL = "redis://:secret@cache:6380/3"
	opts, err = optionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, "secret", opts.Password)

	cfg.Redis.URL = "://bad"
	_, err = optionsFromConfig(cfg)
	require.Error(t, err)
}

type mockCmdable struct {
	incr        map[string]int64
	incrErr     error
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{incr: make(map[string]int64)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	if m.incrErr != nil {
		return redis.NewIntResult(0, m.incrErr)
	}
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: ttl})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.incr[k]; ok {
			delete(m.incr, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
