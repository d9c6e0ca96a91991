// Package prebuilt assembles ready-made graphs over graph.MessagesState.
//
// CreateReactAgent builds the classic reason-and-act loop in a single call:
//
//	agent -> tools -> agent -> ... -> END
//
// The agent node asks the model for the next message; ToolsCondition routes to
// the tools node while the model requests function calls, and the tools node
// appends one tool message per call. The building blocks (NewModelNode,
// ToolNode, ToolsCondition) are exported for hand-built graphs.
package prebuilt
