package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"respd/resp"
	"respd/store"
)

func TestGetSetRoundTrip(t *testing.T) {
	s := store.New()
	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", resp.BulkString("v1"))
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.True(t, resp.Equal(resp.BulkString("v1"), v))

	s.Set("k", resp.BulkString("v2"))
	v, ok = s.Get("k")
	require.True(t, ok)
	assert.True(t, resp.Equal(resp.BulkString("v2"), v))
}

func TestHGetHSetRoundTrip(t *testing.T) {
	s := store.New()
	_, ok := s.HGet("h", "f")
	assert.False(t, ok)

	s.HSet("h", "f1", resp.Integer(1))
	s.HSet("h", "f2", resp.Integer(2))

	v, ok := s.HGet("h", "f1")
	require.True(t, ok)
	assert.True(t, resp.Equal(resp.Integer(1), v))

	_, ok = s.HGet("h", "absent")
	assert.False(t, ok)

	all, ok := s.HGetAll("h")
	require.True(t, ok)
	assert.Len(t, all, 2)
	assert.True(t, resp.Equal(resp.Integer(2), all["f2"]))
}

func TestHGetAllMissingKey(t *testing.T) {
	s := store.New()
	_, ok := s.HGetAll("nope")
	assert.False(t, ok)
}

func TestSAddDedupAndOrder(t *testing.T) {
	s := store.New()
	n := s.SAdd("set", []string{"a", "b", "a", "c"})
	assert.Equal(t, 3, n)

	assert.True(t, s.SIsMember("set", "a"))
	assert.True(t, s.SIsMember("set", "b"))
	assert.False(t, s.SIsMember("set", "z"))

	n = s.SAdd("set", []string{"a", "d"})
	assert.Equal(t, 1, n, "only the new member counts toward the second add")
}

func TestSIsMemberMissingKey(t *testing.T) {
	s := store.New()
	assert.False(t, s.SIsMember("nope", "x"))
}

// TestConcurrentHSetOnNewKeyNoLostUpdates exercises the getOrCreate race
// fix directly: many goroutines HSet distinct fields on the same
// brand-new hash key concurrently, and every field must survive.
func TestConcurrentHSetOnNewKeyNoLostUpdates(t *testing.T) {
	s := store.New()
	const n = 200

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			s.HSet("shared", fmt.Sprintf("field-%d", i), resp.Integer(int64(i)))
		}(i)
	}
	wg.Wait()

	all, ok := s.HGetAll("shared")
	require.True(t, ok)
	assert.Len(t, all, n)
	for i := 0; i < n; i++ {
		v, ok := all[fmt.Sprintf("field-%d", i)]
		require.True(t, ok)
		assert.True(t, resp.Equal(resp.Integer(int64(i)), v))
	}
}

// TestConcurrentSAddOnNewKeyNoLostUpdates is the same property for sets:
// concurrent SAdds of distinct members on a brand-new set key must all
// be recorded, with no member silently dropped.
func TestConcurrentSAddOnNewKeyNoLostUpdates(t *testing.T) {
	s := store.New()
	const n = 200

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			s.SAdd("shared-set", []string{fmt.Sprintf("member-%d", i)})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.True(t, s.SIsMember("shared-set", fmt.Sprintf("member-%d", i)))
	}
}

// TestConcurrentSAddSameMemberCountsOnce races many goroutines adding the
// exact same member to the same brand-new key; total "added" count across
// all callers must equal 1.
func TestConcurrentSAddSameMemberCountsOnce(t *testing.T) {
	s := store.New()
	const n = 100

	var wg sync.WaitGroup
	var totalAdded int64
	var mu sync.Mutex
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			added := s.SAdd("race-key", []string{"only-member"})
			mu.Lock()
			totalAdded += int64(added)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, totalAdded)
	assert.True(t, s.SIsMember("race-key", "only-member"))
}
