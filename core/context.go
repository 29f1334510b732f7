package core

import "context"

// Context keys for forecast runs
type contextKey string

const runIDKey contextKey = "runID"

// withRunID stores the run store ID of the current forecast run in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the run store ID from context, if one was recorded
func getRunID(ctx context.Context) (int64, bool) {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0, false // default: run tracking disabled
	}
	runID, ok := val.(int64)
	return runID, ok && runID > 0
}
