// File: internal/speech/cached.go
package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"polly-relay/internal/cache"
	"polly-relay/internal/logging"
	"polly-relay/internal/worker"

	"golang.org/x/sync/singleflight"
)

const keyPrefix = "speech:"

// CachedSynthesizer 先查 Redis，未命中才呼叫下游並在背景寫回快取。
// 同一個 key 同時未命中時只會呼叫一次下游
type CachedSynthesizer struct {
	sf      singleflight.Group
	next    Synthesizer
	cache   cache.Cache
	ttl     time.Duration
	workers worker.Pool
	log     logging.Logger
}

func NewCachedSynthesizer(next Synthesizer, c cache.Cache, ttl time.Duration, workers worker.Pool, log logging.Logger) *CachedSynthesizer {
	return &CachedSynthesizer{next: next, cache: c, ttl: ttl, workers: workers, log: log}
}

// CacheKey voice 與 text 以 NUL 分隔後取 sha256
func CacheKey(text, voice string) string {
	sum := sha256.Sum256([]byte(voice + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (s *CachedSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	key := CacheKey(text, voice)

	audio, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(audio) > 0:
		s.log.Debug(ctx, "speech cache hit", "voice", voice)
		return audio, nil
	case err != nil && !cache.IsMiss(err):
		s.log.Warn(ctx, "speech cache read failed", "error", err)
	}

	// 共用的下游呼叫不跟隨第一個請求取消，各呼叫端只等待自己的 ctx
	flightCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		audio, err := s.next.Synthesize(flightCtx, text, voice)
		if err != nil {
			return nil, err
		}
		s.workers.Submit("speech-cache-write", func(ctx context.Context) {
			if err := s.cache.Set(ctx, key, audio, s.ttl).Err(); err != nil {
				s.log.Warn(ctx, "speech cache write failed", "error", err)
			}
		})
		return audio, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}
