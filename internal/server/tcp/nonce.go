package tcp

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"

	"powaccount/internal/domain"
)

// NonceStore hands out per-connection nonces and lets each one be redeemed
// once, within ttl of being issued.
type NonceStore struct {
	mu    sync.Mutex
	cache *bigcache.BigCache
	ttl   time.Duration
	now   func() time.Time
}

func NewNonceStore(ctx context.Context, ttl time.Duration) (*NonceStore, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("challenge ttl must be positive, got %s", ttl)
	}

	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntrySize = 8
	cfg.Verbose = false
	if ttl < 2*time.Second {
		cfg.CleanWindow = ttl / 2
	}

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create nonce cache: %w", err)
	}
	return &NonceStore{cache: cache, ttl: ttl, now: time.Now}, nil
}

// Issue draws a fresh nonce and records when it was handed out.
func (s *NonceStore) Issue() (domain.Nonce, error) {
	var n domain.Nonce
	if _, err := rand.Read(n[:]); err != nil {
		return n, fmt.Errorf("failed to draw nonce: %w", err)
	}

	var issued [8]byte
	binary.BigEndian.PutUint64(issued[:], uint64(s.now().UnixNano()))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Set(hex.EncodeToString(n[:]), issued[:]); err != nil {
		return n, fmt.Errorf("failed to store nonce: %w", err)
	}
	return n, nil
}

// Redeem consumes n. It reports false when n was never issued, was already
// redeemed or is older than the ttl. The age is checked here because the
// cache evicts lazily.
func (s *NonceStore) Redeem(n domain.Nonce) (bool, error) {
	key := hex.EncodeToString(n[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	issued, err := s.cache.Get(key)
	switch {
	case errors.Is(err, bigcache.ErrEntryNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := s.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return false, err
	}

	if len(issued) != 8 {
		return false, nil
	}
	at := time.Unix(0, int64(binary.BigEndian.Uint64(issued)))
	return s.now().Sub(at) <= s.ttl, nil
}

func (s *NonceStore) Close() error {
	return s.cache.Close()
}
