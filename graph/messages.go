package graph

import (
	"github.com/google/uuid"

	"github.com/hupe1980/agentgraph/core"
)

// MessagesState is the state of chat-shaped graphs: an append-only
// conversation merged with AddMessages.
type MessagesState struct {
	Messages []core.Content `json:"messages"`
}

// AddMessages merges right into left. Messages without an ID receive one;
// a message whose ID already exists replaces the earlier one in place.
// Neither input is modified.
func AddMessages(left, right []core.Content) []core.Content {
	out := make([]core.Content, 0, len(left)+len(right))
	index := make(map[string]int, len(left)+len(right))

	for _, m := range left {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}

		index[m.ID] = len(out)
		out = append(out, m)
	}

	for _, m := range right {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}

		if i, ok := index[m.ID]; ok {
			out[i] = m
			continue
		}

		index[m.ID] = len(out)
		out = append(out, m)
	}

	return out
}

// MessagesReducer is the Reducer for MessagesState.
func MessagesReducer(current, update MessagesState) MessagesState {
	return MessagesState{Messages: AddMessages(current.Messages, update.Messages)}
}

// NewMessagesGraph returns an empty graph over MessagesState.
func NewMessagesGraph() *StateGraph[MessagesState] {
	return New[MessagesState](MessagesReducer)
}

// Messages wraps msgs as a MessagesState input or update.
func Messages(msgs ...core.Content) *MessagesState {
	return &MessagesState{Messages: msgs}
}
