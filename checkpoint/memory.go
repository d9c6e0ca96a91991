package checkpoint

import (
	"context"
	"sync"

	"github.com/alphadose/haxmap"
)

type threadLog struct {
	mu    sync.RWMutex
	items []Checkpoint // oldest first
}

// MemorySaver is a volatile Saver keeping checkpoints in process memory. It is
// safe for concurrent use; returned checkpoints are copies.
type MemorySaver struct {
	threads *haxmap.Map[string, *threadLog]
}

// NewMemorySaver constructs an empty in-memory saver.
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{threads: haxmap.New[string, *threadLog]()}
}

// Put appends cp to its thread.
func (s *MemorySaver) Put(_ context.Context, cp Checkpoint) (Checkpoint, error) {
	cp = Prepare(cp)

	log, _ := s.threads.GetOrCompute(cp.ThreadID, func() *threadLog { return &threadLog{} })

	log.mu.Lock()
	log.items = append(log.items, cp.Clone())
	log.mu.Unlock()

	return cp, nil
}

// Get returns the checkpoint id of thread, or the newest when id is empty.
func (s *MemorySaver) Get(_ context.Context, threadID, id string) (Checkpoint, error) {
	log, ok := s.threads.Get(threadID)
	if !ok {
		return Checkpoint{}, ErrNotFound
	}

	log.mu.RLock()
	defer log.mu.RUnlock()

	if len(log.items) == 0 {
		return Checkpoint{}, ErrNotFound
	}

	if id == "" {
		return log.items[len(log.items)-1].Clone(), nil
	}

	for i := len(log.items) - 1; i >= 0; i-- {
		if log.items[i].ID == id {
			return log.items[i].Clone(), nil
		}
	}

	return Checkpoint{}, ErrNotFound
}

// List returns the thread's checkpoints newest first.
func (s *MemorySaver) List(_ context.Context, threadID string, limit int) ([]Checkpoint, error) {
	log, ok := s.threads.Get(threadID)
	if !ok {
		return []Checkpoint{}, nil
	}

	log.mu.RLock()
	defer log.mu.RUnlock()

	n := len(log.items)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Checkpoint, 0, n)
	for i := len(log.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, log.items[i].Clone())
	}

	return out, nil
}

// DeleteThread drops all checkpoints of threadID.
func (s *MemorySaver) DeleteThread(_ context.Context, threadID string) error {
	s.threads.Del(threadID)
	return nil
}

// Threads returns the ids of all threads holding checkpoints.
func (s *MemorySaver) Threads() []string {
	var ids []string

	s.threads.ForEach(func(k string, _ *threadLog) bool {
		ids = append(ids, k)
		return true
	})

	return ids
}
