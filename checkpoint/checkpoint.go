// Package checkpoint persists graph state per conversation thread.
//
// A compiled graph writes one Checkpoint after every superstep. Checkpoints
// form a per-thread chain (ParentID) ordered by creation; the newest one is
// the thread's current state and the starting point when a run resumes.
package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a thread or checkpoint does not exist.
var ErrNotFound = errors.New("checkpoint not found")

// Sources recorded in Metadata.Source.
const (
	SourceInput  = "input"
	SourceLoop   = "loop"
	SourceUpdate = "update"
)

// Metadata describes how a checkpoint came to be.
type Metadata struct {
	Source string   `json:"source"`
	Step   int      `json:"step"`
	Writes []string `json:"writes,omitempty"` // nodes whose updates are merged in this checkpoint
}

// Checkpoint is a serialized snapshot of graph state for one thread.
type Checkpoint struct {
	ID        string          `json:"id"`
	ThreadID  string          `json:"thread_id"`
	ParentID  string          `json:"parent_id,omitempty"`
	Step      int             `json:"step"`
	State     json.RawMessage `json:"state"`
	Next      []string        `json:"next,omitempty"` // nodes scheduled to run when resumed
	Metadata  Metadata        `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}

// Saver stores checkpoints.
type Saver interface {
	// Put stores cp. ID and CreatedAt are filled in when empty.
	Put(ctx context.Context, cp Checkpoint) (Checkpoint, error)
	// Get returns the checkpoint with the given id, or the newest one when id is empty.
	Get(ctx context.Context, threadID, id string) (Checkpoint, error)
	// List returns up to limit checkpoints of a thread, newest first. limit <= 0 means all.
	List(ctx context.Context, threadID string, limit int) ([]Checkpoint, error)
	// DeleteThread removes every checkpoint of a thread.
	DeleteThread(ctx context.Context, threadID string) error
}

// NewID returns a time-ordered checkpoint id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// Prepare fills in the ID and creation time of cp when missing.
func Prepare(cp Checkpoint) Checkpoint {
	if cp.ID == "" {
		cp.ID = NewID()
	}

	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}

	return cp
}

// Clone returns a deep copy of cp.
func (cp Checkpoint) Clone() Checkpoint {
	out := cp
	out.State = append(json.RawMessage(nil), cp.State...)
	out.Next = append([]string(nil), cp.Next...)
	out.Metadata.Writes = append([]string(nil), cp.Metadata.Writes...)

	return out
}
