// Package graph implements stateful, checkpointed state graphs.
//
// A StateGraph[S] is built from named nodes (functions returning a partial
// state update) connected by static edges and conditional edges (routers that
// pick the next node from the current state). Compile validates the wiring and
// returns a Compiled[S] that executes the graph in supersteps:
//
//  1. the input is merged into the thread's saved state with the reducer
//  2. every scheduled node runs concurrently on the same state snapshot
//  3. node updates are merged in node registration order
//  4. a checkpoint is written and successors are resolved from the edges
//
// Execution ends when no successors remain, when a node listed in
// InterruptBefore/InterruptAfter is reached, or when RecursionLimit supersteps
// have run. With a checkpoint.Saver attached, state is kept per thread and an
// interrupted run resumes when invoked again with a nil input.
//
// The common chat-shaped state is provided as MessagesState together with the
// AddMessages reducer:
//
//	g := graph.NewMessagesGraph()
//	_ = g.AddNode("chatbot", chatbot)
//	_ = g.SetEntryPoint("chatbot")
//	_ = g.SetFinishPoint("chatbot")
//	app, err := g.Compile(func(o *graph.CompileOptions) { o.Checkpointer = checkpoint.NewMemorySaver() })
package graph
