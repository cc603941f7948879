package eviction

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLruPolicy_EvictEmpty(t *testing.T) {
	l := NewLruPolicy()
	_, ok := l.Evict()
	assert.False(t, ok, "expected no victim from empty policy")
}

func TestLruPolicy_EvictsLeastRecentlyUsed(t *testing.T) {
	l := NewLruPolicy()
	l.Touch("a")
	l.Touch("b")
	l.Touch("a") // re-touch: "a" is now most recent, "b" is least recent

	got, ok := l.Evict()
	require.True(t, ok)
	assert.Equal(t, "b", got)

	got, ok = l.Evict()
	require.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestLruPolicy_ForgetRemovesFromTracking(t *testing.T) {
	l := NewLruPolicy()
	l.Touch("a")
	l.Touch("b")
	l.Forget("a")

	got, ok := l.Evict()
	require.True(t, ok, "forgotten key must not surface")
	assert.Equal(t, "b", got)

	_, ok = l.Evict()
	assert.False(t, ok, "expected no further tracked keys")
}

func TestLruPolicy_ForgetUnknownKeyIsNoop(t *testing.T) {
	l := NewLruPolicy()
	l.Touch("a")
	l.Forget("missing")

	got, ok := l.Evict()
	require.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestLruPolicy_Clear(t *testing.T) {
	l := NewLruPolicy()
	l.Touch("a")
	l.Touch("b")
	l.Clear()

	_, ok := l.Evict()
	assert.False(t, ok, "expected no tracked keys after Clear")
}

func TestLruPolicy_ConcurrentTouch(t *testing.T) {
	l := NewLruPolicy()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Touch(string(rune('a' + n%26)))
		}(i)
	}
	wg.Wait()

	count := 0
	for {
		if _, ok := l.Evict(); !ok {
			break
		}
		count++
	}
	assert.Equal(t, 26, count, "expected 26 distinct keys tracked")
}
