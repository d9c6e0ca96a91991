// Package agent provides conversational agents over checkpointed message
// graphs.
//
// Two graphs are offered. NewChatGraph wires a single "chatbot" node by hand,
// which is the verbose construction; NewReactAgent delegates to
// prebuilt.CreateReactAgent and adds tool use in one call. Either graph is
// driven through an Assistant, which keys conversations by thread id:
//
//	a, _ := agent.NewChatAgent(m)
//	reply, _ := a.Chat(ctx, "Hi, I'm Ann", "thread-1")
//	reply, _ = a.Chat(ctx, "What's my name?", "thread-1")
//	history, _ := a.History(ctx, "thread-1")
package agent
