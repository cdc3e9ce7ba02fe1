package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceIssueUnique(t *testing.T) {
	s := NewNonceStore(time.Minute)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := s.Issue()
		require.Len(t, n, 32) // 16 bytes hex-encoded
		assert.False(t, seen[n], "nonce %q issued twice", n)
		seen[n] = true
	}
}

func TestNonceSingleUse(t *testing.T) {
	s := NewNonceStore(time.Minute)
	n := s.Issue()

	assert.True(t, s.Consume(n))
	assert.False(t, s.Consume(n), "second consume must fail")
}

func TestNonceUnknown(t *testing.T) {
	s := NewNonceStore(time.Minute)
	assert.False(t, s.Consume("deadbeef"))
}

func TestNonceExpiry(t *testing.T) {
	s := NewNonceStore(10 * time.Millisecond)
	n := s.Issue()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, s.Consume(n), "expired nonce must not be consumable")
}

func TestNonceConcurrentConsume(t *testing.T) {
	s := NewNonceStore(time.Minute)
	n := s.Issue()

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Consume(n)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent consume may succeed")
}
