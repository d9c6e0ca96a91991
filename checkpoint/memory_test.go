package checkpoint

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySaverPutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySaver()

	_, err := s.Get(ctx, "t1", "")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.Put(ctx, Checkpoint{ThreadID: "t1", State: json.RawMessage(`{"n":1}`), Metadata: Metadata{Source: SourceInput}})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := s.Put(ctx, Checkpoint{ThreadID: "t1", ParentID: first.ID, Step: 1, State: json.RawMessage(`{"n":2}`), Next: []string{"agent"}})
	require.NoError(t, err)

	latest, err := s.Get(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, []string{"agent"}, latest.Next)

	byID, err := s.Get(ctx, "t1", first.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(byID.State))

	_, err = s.Get(ctx, "t1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySaverListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySaver()

	var ids []string
	for i := 0; i < 4; i++ {
		cp, err := s.Put(ctx, Checkpoint{ThreadID: "t", Step: i})
		require.NoError(t, err)
		ids = append(ids, cp.ID)
	}

	all, err := s.List(ctx, "t", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID)
	assert.Equal(t, ids[0], all[3].ID)

	two, err := s.List(ctx, "t", 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, 3, two[0].Step)

	none, err := s.List(ctx, "other", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemorySaverIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySaver()

	cp, err := s.Put(ctx, Checkpoint{ThreadID: "t", State: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	got, err := s.Get(ctx, "t", cp.ID)
	require.NoError(t, err)
	got.State[2] = 'b'

	again, err := s.Get(ctx, "t", cp.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(again.State))
}

func TestMemorySaverDeleteThread(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySaver()

	_, err := s.Put(ctx, Checkpoint{ThreadID: "a"})
	require.NoError(t, err)
	_, err = s.Put(ctx, Checkpoint{ThreadID: "b"})
	require.NoError(t, err)

	threads := s.Threads()
	sort.Strings(threads)
	assert.Equal(t, []string{"a", "b"}, threads)

	require.NoError(t, s.DeleteThread(ctx, "a"))
	_, err = s.Get(ctx, "a", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySaverConcurrentThreads(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySaver()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Put(ctx, Checkpoint{ThreadID: "shared"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.List(ctx, "shared", 0)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
