// Package natskv implements checkpoint.Saver on a NATS JetStream key/value
// bucket so conversation threads survive process restarts.
//
// Keys have the form cp.<thread>.<checkpoint-id> where <thread> is the
// hex-encoded thread id prefixed with "t". Checkpoint ids are time ordered, so
// the lexically greatest key of a thread is its newest checkpoint.
package natskv

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/hupe1980/agentgraph/checkpoint"
	"github.com/hupe1980/agentgraph/logging"
)

// DefaultBucket is the bucket used when Options.Bucket is empty.
const DefaultBucket = "agentgraph_checkpoints"

// Options configures a Saver.
type Options struct {
	Bucket   string
	TTL      time.Duration // zero keeps checkpoints forever
	Replicas int
	Logger   logging.Logger
}

// Saver is a checkpoint.Saver backed by a JetStream key/value bucket.
type Saver struct {
	kv     jetstream.KeyValue
	nc     *nats.Conn // owned connection, nil when constructed from a JetStream handle
	logger logging.Logger
}

var _ checkpoint.Saver = (*Saver)(nil)

// New creates (or binds to) the checkpoint bucket on js.
func New(ctx context.Context, js jetstream.JetStream, optFns ...func(o *Options)) (*Saver, error) {
	opts := Options{Bucket: DefaultBucket, Replicas: 1}
	for _, fn := range optFns {
		fn(&opts)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      opts.Bucket,
		Description: "agentgraph checkpoints",
		TTL:         opts.TTL,
		Replicas:    opts.Replicas,
	})
	if err != nil {
		return nil, fmt.Errorf("natskv: create bucket %q: %w", opts.Bucket, err)
	}

	return &Saver{kv: kv, logger: logging.OrNoOp(opts.Logger)}, nil
}

// Connect dials url and creates a Saver owning the connection. Close releases it.
func Connect(ctx context.Context, url string, optFns ...func(o *Options)) (*Saver, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, nats.Name("agentgraph-checkpointer"))
	if err != nil {
		return nil, fmt.Errorf("natskv: connect %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natskv: jetstream: %w", err)
	}

	s, err := New(ctx, js, optFns...)
	if err != nil {
		nc.Close()
		return nil, err
	}

	s.nc = nc

	return s, nil
}

// Close drains the owned connection, if any.
func (s *Saver) Close() error {
	if s.nc == nil {
		return nil
	}

	return s.nc.Drain()
}

func threadToken(threadID string) string {
	return "t" + hex.EncodeToString([]byte(threadID))
}

func key(threadID, id string) string {
	return "cp." + threadToken(threadID) + "." + id
}

// Put stores cp under its thread.
func (s *Saver) Put(ctx context.Context, cp checkpoint.Checkpoint) (checkpoint.Checkpoint, error) {
	cp = checkpoint.Prepare(cp)

	b, err := json.Marshal(cp)
	if err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("natskv: encode checkpoint: %w", err)
	}

	if _, err := s.kv.Put(ctx, key(cp.ThreadID, cp.ID), b); err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("natskv: put checkpoint: %w", err)
	}

	s.logger.Debug("checkpoint.put", "thread_id", cp.ThreadID, "checkpoint_id", cp.ID, "step", cp.Step)

	return cp, nil
}

// Get returns checkpoint id of threadID, or the newest when id is empty.
func (s *Saver) Get(ctx context.Context, threadID, id string) (checkpoint.Checkpoint, error) {
	if id == "" {
		ids, err := s.ids(ctx, threadID)
		if err != nil {
			return checkpoint.Checkpoint{}, err
		}

		if len(ids) == 0 {
			return checkpoint.Checkpoint{}, checkpoint.ErrNotFound
		}

		id = ids[0]
	}

	return s.load(ctx, threadID, id)
}

// List returns up to limit checkpoints of threadID, newest first.
func (s *Saver) List(ctx context.Context, threadID string, limit int) ([]checkpoint.Checkpoint, error) {
	ids, err := s.ids(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	out := make([]checkpoint.Checkpoint, 0, len(ids))

	for _, id := range ids {
		cp, err := s.load(ctx, threadID, id)
		if errors.Is(err, checkpoint.ErrNotFound) {
			continue // expired between listing and loading
		}

		if err != nil {
			return nil, err
		}

		out = append(out, cp)
	}

	return out, nil
}

// DeleteThread purges every checkpoint key of threadID.
func (s *Saver) DeleteThread(ctx context.Context, threadID string) error {
	ids, err := s.ids(ctx, threadID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := s.kv.Purge(ctx, key(threadID, id)); err != nil {
			return fmt.Errorf("natskv: purge %s: %w", id, err)
		}
	}

	return nil
}

func (s *Saver) load(ctx context.Context, threadID, id string) (checkpoint.Checkpoint, error) {
	entry, err := s.kv.Get(ctx, key(threadID, id))
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return checkpoint.Checkpoint{}, checkpoint.ErrNotFound
	}

	if err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("natskv: get checkpoint: %w", err)
	}

	var cp checkpoint.Checkpoint
	if err := json.Unmarshal(entry.Value(), &cp); err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("natskv: decode checkpoint: %w", err)
	}

	return cp, nil
}

// ids returns the checkpoint ids of threadID, newest first.
func (s *Saver) ids(ctx context.Context, threadID string) ([]string, error) {
	prefix := "cp." + threadToken(threadID) + "."

	w, err := s.kv.Watch(ctx, prefix+"*", jetstream.IgnoreDeletes(), jetstream.MetaOnly())
	if err != nil {
		return nil, fmt.Errorf("natskv: watch: %w", err)
	}
	defer func() { _ = w.Stop() }()

	var ids []string

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case entry, ok := <-w.Updates():
			if !ok || entry == nil {
				// nil marks the end of the initial values
				sort.Sort(sort.Reverse(sort.StringSlice(ids)))
				return ids, nil
			}

			ids = append(ids, strings.TrimPrefix(entry.Key(), prefix))
		}
	}
}
