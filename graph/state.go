package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentgraph/checkpoint"
)

// Snapshot is the decoded state of a thread at one checkpoint.
type Snapshot[S any] struct {
	Values       S
	Next         []string
	CheckpointID string
	ParentID     string
	Step         int
	Metadata     checkpoint.Metadata
	CreatedAt    time.Time
}

// Interrupted reports whether the snapshot has pending nodes.
func (s Snapshot[S]) Interrupted() bool { return len(s.Next) > 0 }

func (c *Compiled[S]) snapshot(cp checkpoint.Checkpoint) (Snapshot[S], error) {
	st, err := c.decode(cp.State)
	if err != nil {
		return Snapshot[S]{}, err
	}

	return Snapshot[S]{
		Values:       st,
		Next:         cp.Next,
		CheckpointID: cp.ID,
		ParentID:     cp.ParentID,
		Step:         cp.Step,
		Metadata:     cp.Metadata,
		CreatedAt:    cp.CreatedAt,
	}, nil
}

// GetState returns the thread's newest snapshot (or cfg.CheckpointID). A
// thread without checkpoints yields a zero snapshot.
func (c *Compiled[S]) GetState(ctx context.Context, cfg Config) (Snapshot[S], error) {
	if c.saver == nil {
		return Snapshot[S]{}, ErrNoCheckpointer
	}

	cp, err := c.saver.Get(ctx, cfg.ThreadID, cfg.CheckpointID)
	if errors.Is(err, checkpoint.ErrNotFound) && cfg.CheckpointID == "" {
		return Snapshot[S]{Step: -1}, nil
	}

	if err != nil {
		return Snapshot[S]{}, err
	}

	return c.snapshot(cp)
}

// GetStateHistory returns up to limit snapshots of the thread, newest first.
func (c *Compiled[S]) GetStateHistory(ctx context.Context, cfg Config, limit int) ([]Snapshot[S], error) {
	if c.saver == nil {
		return nil, ErrNoCheckpointer
	}

	cps, err := c.saver.List(ctx, cfg.ThreadID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Snapshot[S], 0, len(cps))

	for _, cp := range cps {
		s, err := c.snapshot(cp)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// UpdateState merges update into the thread's state as if node asNode had
// produced it, and schedules asNode's successors. With an empty asNode the
// pending nodes are kept.
func (c *Compiled[S]) UpdateState(ctx context.Context, cfg Config, update S, asNode string) (Snapshot[S], error) {
	if c.saver == nil {
		return Snapshot[S]{}, ErrNoCheckpointer
	}

	if asNode != "" && asNode != START {
		if _, ok := c.nodes[asNode]; !ok {
			return Snapshot[S]{}, fmt.Errorf("%w: %q", ErrNodeNotFound, asNode)
		}
	}

	defer c.lockThread(cfg.ThreadID)()

	rs := runState[S]{step: -1}

	cp, err := c.saver.Get(ctx, cfg.ThreadID, cfg.CheckpointID)

	switch {
	case err == nil:
		st, derr := c.decode(cp.State)
		if derr != nil {
			return Snapshot[S]{}, derr
		}

		rs.state, rs.next, rs.parentID, rs.step = st, cp.Next, cp.ID, cp.Step
	case errors.Is(err, checkpoint.ErrNotFound) && cfg.CheckpointID == "":
	default:
		return Snapshot[S]{}, err
	}

	rs.state = c.reducer(rs.state, update)
	rs.step++

	next := rs.next
	md := checkpoint.Metadata{Source: checkpoint.SourceUpdate, Step: rs.step}

	if asNode != "" {
		if next, err = c.successors(ctx, []string{asNode}, rs.state); err != nil {
			return Snapshot[S]{}, err
		}

		md.Writes = []string{asNode}
	}

	if err := c.save(ctx, cfg.ThreadID, &rs, next, md); err != nil {
		return Snapshot[S]{}, err
	}

	saved, err := c.saver.Get(ctx, cfg.ThreadID, rs.parentID)
	if err != nil {
		return Snapshot[S]{}, err
	}

	return c.snapshot(saved)
}
