package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"polly-relay/internal/cache"
	"polly-relay/internal/logging"
	"polly-relay/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	calls int
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(context.Context, string, string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func TestCacheKey(t *testing.T) {
	k := CacheKey("Hello", "Joanna")
	require.Len(t, k, len("speech:")+64)
	require.Equal(t, k, CacheKey("Hello", "Joanna"))
	require.NotEqual(t, k, CacheKey("Hello", "Matthew"))
	// NUL 分隔避免 voice/text 邊界混淆
	require.NotEqual(t, CacheKey("bc", "a"), CacheKey("c", "ab"))
}

func TestCachedSynthesizer(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then write back", func(t *testing.T) {
		next := &fakeSynth{audio: []byte("mp3")}
		var setKey string
		var setVal any
		var setTTL time.Duration
		c := &cache.FakeCache{
			GetFn: func(context.Context, string) *redis.StringCmd {
				return redis.NewStringResult("", redis.Nil)
			},
			SetFn: func(_ context.Context, key string, val any, ttl time.Duration) *redis.StatusCmd {
				setKey, setVal, setTTL = key, val, ttl
				return redis.NewStatusResult("OK", nil)
			},
		}
		pool := &worker.FakePool{}
		s := NewCachedSynthesizer(next, c, time.Hour, pool, logging.Discard())

		audio, err := s.Synthesize(ctx, "Hello", "Joanna")
		require.NoError(t, err)
		require.Equal(t, []byte("mp3"), audio)
		require.Equal(t, 1, next.calls)
		require.Equal(t, CacheKey("Hello", "Joanna"), setKey)
		require.Equal(t, []byte("mp3"), setVal)
		require.Equal(t, time.Hour, setTTL)
		require.Equal(t, []string{"speech-cache-write"}, pool.Names)
	})

	t.Run("hit skips provider", func(t *testing.T) {
		next := &fakeSynth{}
		c := &cache.FakeCache{
			GetFn: func(_ context.Context, key string) *redis.StringCmd {
				require.Equal(t, CacheKey("Hi", "Matthew"), key)
				return redis.NewStringResult("cached", nil)
			},
		}
		pool := &worker.FakePool{}
		s := NewCachedSynthesizer(next, c, time.Hour, pool, logging.Discard())

		audio, err := s.Synthesize(ctx, "Hi", "Matthew")
		require.NoError(t, err)
		require.Equal(t, []byte("cached"), audio)
		require.Zero(t, next.calls)
		require.Empty(t, pool.Names)
	})

	t.Run("cache read error falls through", func(t *testing.T) {
		next := &fakeSynth{audio: []byte("mp3")}
		c := &cache.FakeCache{
			GetFn: func(context.Context, string) *redis.StringCmd {
				return redis.NewStringResult("", errors.New("READONLY"))
			},
			SetFn: func(context.Context, string, any, time.Duration) *redis.StatusCmd {
				return redis.NewStatusResult("", errors.New("READONLY"))
			},
		}
		s := NewCachedSynthesizer(next, c, time.Hour, &worker.FakePool{}, logging.Discard())

		audio, err := s.Synthesize(ctx, "Hello", "Joanna")
		require.NoError(t, err)
		require.Equal(t, []byte("mp3"), audio)
		require.Equal(t, 1, next.calls)
	})

	t.Run("provider error not cached", func(t *testing.T) {
		next := &fakeSynth{err: errors.New("boom")}
		c := &cache.FakeCache{
			GetFn: func(context.Context, string) *redis.StringCmd {
				return redis.NewStringResult("", redis.Nil)
			},
		}
		pool := &worker.FakePool{}
		s := NewCachedSynthesizer(next, c, time.Hour, pool, logging.Discard())

		_, err := s.Synthesize(ctx, "Hello", "Joanna")
		require.EqualError(t, err, "boom")
		require.Empty(t, pool.Names)
	})
}

type blockingSynth struct {
	mu      sync.Mutex
	calls   int
	ctx     context.Context
	started chan struct{}
	release chan struct{}
}

func (b *blockingSynth) Synthesize(ctx context.Context, _, _ string) ([]byte, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.ctx = ctx
	b.mu.Unlock()
	if first {
		close(b.started)
	}
	<-b.release
	return []byte("mp3"), ctx.Err()
}

func TestCachedSynthesizerCallerCancel(t *testing.T) {
	next := &blockingSynth{started: make(chan struct{}), release: make(chan struct{})}
	c := &cache.FakeCache{
		GetFn: func(context.Context, string) *redis.StringCmd {
			return redis.NewStringResult("", redis.Nil)
		},
		SetFn: func(context.Context, string, any, time.Duration) *redis.StatusCmd {
			return redis.NewStatusResult("OK", nil)
		},
	}
	s := NewCachedSynthesizer(next, c, time.Hour, &worker.FakePool{}, logging.Discard())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := s.Synthesize(ctxA, "Hello", "Joanna")
		errA <- err
	}()
	<-next.started

	type result struct {
		audio []byte
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		audio, err := s.Synthesize(context.Background(), "Hello", "Joanna")
		resB <- result{audio, err}
	}()

	// 第一個呼叫端離開，只影響它自己
	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	next.mu.Lock()
	flightCtx := next.ctx
	next.mu.Unlock()
	require.NoError(t, flightCtx.Err())

	close(next.release)
	b := <-resB
	require.NoError(t, b.err)
	require.Equal(t, []byte("mp3"), b.audio)
}
