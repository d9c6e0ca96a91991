package graph

import "context"

type runInfoKey struct{}

// RunInfo describes the node execution a context belongs to.
type RunInfo struct {
	Graph    string
	ThreadID string
	Node     string
	Step     int
}

// RunInfoFrom returns the RunInfo attached to a node's context.
func RunInfoFrom(ctx context.Context) (RunInfo, bool) {
	ri, ok := ctx.Value(runInfoKey{}).(RunInfo)
	return ri, ok
}

func withRunInfo(ctx context.Context, ri RunInfo) context.Context {
	return context.WithValue(ctx, runInfoKey{}, ri)
}
