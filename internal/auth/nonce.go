package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const nonceBytes = 16 // 128 bits of entropy

// NonceStore issues single-use login nonces. A nonce is live from Issue until
// it is consumed or its TTL passes, whichever comes first. Consume is
// get-and-remove under one lock, so concurrent verifications of the same
// nonce succeed at most once.
type NonceStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, time.Time] // nonce -> expiry
	ttl   time.Duration
}

func NewNonceStore(ttl time.Duration) *NonceStore {
	l, err := lru.New[string, time.Time](4096)
	if err != nil {
		panic(fmt.Sprintf("failed to create nonce cache: %v", err))
	}
	return &NonceStore{cache: l, ttl: ttl}
}

// Issue returns a fresh random nonce and registers it for later consumption.
// A failing randomness source is not recoverable.
func (s *NonceStore) Issue() string {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	nonce := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(nonce, time.Now().Add(s.ttl))
	return nonce
}

// Consume invalidates the nonce and reports whether it was still live.
func (s *NonceStore) Consume(nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.cache.Get(nonce)
	if !ok {
		return false
	}
	s.cache.Remove(nonce)
	return time.Now().Before(expiry)
}
