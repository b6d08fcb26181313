package provenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/redis/go-redis/v9"

	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/sentinel"
)

const maxMarkerLength = 128

// ParseMarker validates a caller supplied marker: 1..128 printable ASCII
// characters without spaces.
func ParseMarker(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "transaction hash is required")
	}
	if len(s) > maxMarkerLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "transaction hash is too long")
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "transaction hash contains invalid characters")
		}
	}
	return s, nil
}

// MemoryReplayGuard is the single-process guard.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryReplayGuard keeps markers for ttl; zero keeps them forever.
func NewMemoryReplayGuard(ttl time.Duration) *MemoryReplayGuard {
	return &MemoryReplayGuard{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (g *MemoryReplayGuard) Consume(_ context.Context, marker string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if at, ok := g.seen[marker]; ok && (g.ttl == 0 || now.Sub(at) < g.ttl) {
		return fmt.Errorf("marker %s: %w", marker, sentinel.ErrAlreadyUsed)
	}
	g.seen[marker] = now
	return nil
}

func (g *MemoryReplayGuard) Release(_ context.Context, marker string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, marker)
	return nil
}

const markerKeyPrefix = "prov:marker:"

// RedisReplayGuard shares consumed markers across instances with SETNX.
type RedisReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReplayGuard(client *redis.Client, ttl time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, ttl: ttl}
}

func (g *RedisReplayGuard) Consume(ctx context.Context, marker string) error {
	ok, err := g.client.SetNX(ctx, markerKeyPrefix+marker, "1", g.ttl).Result()
	if err != nil {
		return fmt.Errorf("consume marker: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if !ok {
		return fmt.Errorf("marker %s: %w", marker, sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (g *RedisReplayGuard) Release(ctx context.Context, marker string) error {
	return g.client.Del(ctx, markerKeyPrefix+marker).Err()
}
