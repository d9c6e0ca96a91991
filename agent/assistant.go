package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/agentgraph/checkpoint"
	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
)

// DefaultThreadID is used when a caller passes an empty thread id.
const DefaultThreadID = "default"

// AssistantOptions configures NewAssistant.
type AssistantOptions struct {
	// ModelCallBudget, when > 0, shares one core.ModelLimiter across all
	// model nodes of a single Chat call.
	ModelCallBudget int
	Logger          logging.Logger
}

// Assistant drives a compiled messages graph as a multi-turn conversation.
// Conversations are kept per thread by the graph's checkpointer.
type Assistant struct {
	app  *graph.Compiled[graph.MessagesState]
	opts AssistantOptions
}

// NewAssistant wraps app.
func NewAssistant(app *graph.Compiled[graph.MessagesState], optFns ...func(o *AssistantOptions)) *Assistant {
	opts := AssistantOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	return &Assistant{app: app, opts: opts}
}

// Graph returns the underlying compiled graph.
func (a *Assistant) Graph() *graph.Compiled[graph.MessagesState] { return a.app }

// Chat sends message on threadID and returns the text of the last assistant
// message. If the run pauses at an interrupt, the text produced so far is
// returned and Pending reports the paused nodes.
func (a *Assistant) Chat(ctx context.Context, message, threadID string) (string, error) {
	return a.invoke(ctx, graph.Messages(core.NewUserMessage(message)), threadID)
}

// Resume continues a thread paused at an interrupt.
func (a *Assistant) Resume(ctx context.Context, threadID string) (string, error) {
	return a.invoke(ctx, nil, threadID)
}

func (a *Assistant) invoke(ctx context.Context, input *graph.MessagesState, threadID string) (string, error) {
	threadID = orDefault(threadID)
	log := a.logger(threadID)
	start := time.Now()

	log.Debug("agent.chat.start", "graph", a.app.Name(), "resume", input == nil)

	out, err := a.app.Invoke(a.runContext(ctx), input, graph.Config{ThreadID: threadID})
	if err != nil {
		log.Error("agent.chat.error", "graph", a.app.Name(), "error", err.Error())
		return "", fmt.Errorf("agent: %w", err)
	}

	log.Info("agent.chat.completed", "graph", a.app.Name(), "messages", len(out.Messages), "duration", time.Since(start))

	return lastAssistantText(out.Messages), nil
}

// Stream sends message on threadID and forwards the graph's events.
func (a *Assistant) Stream(ctx context.Context, message, threadID string) (<-chan graph.Event[graph.MessagesState], <-chan error) {
	return a.app.Stream(a.runContext(ctx), graph.Messages(core.NewUserMessage(message)), graph.Config{ThreadID: orDefault(threadID)})
}

// History returns the saved conversation of threadID, or an empty slice.
func (a *Assistant) History(ctx context.Context, threadID string) ([]core.Content, error) {
	snap, err := a.app.GetState(ctx, graph.Config{ThreadID: orDefault(threadID)})
	if err != nil {
		return nil, err
	}

	if snap.Values.Messages == nil {
		return []core.Content{}, nil
	}

	return snap.Values.Messages, nil
}

// Pending returns the nodes a paused thread will run on Resume.
func (a *Assistant) Pending(ctx context.Context, threadID string) ([]string, error) {
	snap, err := a.app.GetState(ctx, graph.Config{ThreadID: orDefault(threadID)})
	if err != nil {
		return nil, err
	}

	return snap.Next, nil
}

// Reset deletes every checkpoint of threadID.
func (a *Assistant) Reset(ctx context.Context, threadID string) error {
	saver := a.app.Checkpointer()
	if saver == nil {
		return graph.ErrNoCheckpointer
	}

	if err := saver.DeleteThread(ctx, orDefault(threadID)); err != nil && !errors.Is(err, checkpoint.ErrNotFound) {
		return err
	}

	return nil
}

func (a *Assistant) runContext(ctx context.Context) context.Context {
	if a.opts.ModelCallBudget > 0 {
		return core.WithModelLimiter(ctx, core.NewModelLimiter(a.opts.ModelCallBudget))
	}

	return ctx
}

func (a *Assistant) logger(threadID string) logging.Logger {
	if l, ok := a.opts.Logger.(*logging.AgentLogger); ok {
		return l.WithComponent("agent").WithThread(threadID, uuid.NewString())
	}

	return a.opts.Logger
}

func lastAssistantText(msgs []core.Content) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == core.RoleAssistant {
			return msgs[i].Text()
		}
	}

	return ""
}

func orDefault(threadID string) string {
	if threadID == "" {
		return DefaultThreadID
	}

	return threadID
}
