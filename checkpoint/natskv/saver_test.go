package natskv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/checkpoint"
)

func newTestSaver(t *testing.T) *Saver {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, nats.Timeout(500*time.Millisecond))
	if err != nil {
		t.Skipf("nats server not reachable at %s: %v", url, err)
	}
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := checkpoint.NewID()
	bucket := "agentgraph_test_" + id[len(id)-12:]

	s, err := New(ctx, js, func(o *Options) { o.Bucket = bucket })
	if err != nil {
		t.Skipf("jetstream not available: %v", err)
	}

	t.Cleanup(func() { _ = js.DeleteKeyValue(context.Background(), bucket) })

	return s
}

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "cp.t64656661756c74.abc", key("default", "abc"))
	assert.Equal(t, "cp.t.abc", key("", "abc"))
}

func TestSaverRoundTrip(t *testing.T) {
	s := newTestSaver(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "thread 1", "")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)

	first, err := s.Put(ctx, checkpoint.Checkpoint{ThreadID: "thread 1", State: json.RawMessage(`{"messages":[]}`)})
	require.NoError(t, err)

	second, err := s.Put(ctx, checkpoint.Checkpoint{ThreadID: "thread 1", ParentID: first.ID, Step: 1, State: json.RawMessage(`{"messages":[1]}`)})
	require.NoError(t, err)

	latest, err := s.Get(ctx, "thread 1", "")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, first.ID, latest.ParentID)

	list, err := s.List(ctx, "thread 1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, s.DeleteThread(ctx, "thread 1"))

	_, err = s.Get(ctx, "thread 1", "")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}
