package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that the run ID can be safely read by many series workers.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withRunID(context.Background(), 12345)

	const numGoroutines = 50
	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runID, ok := getRunID(ctx)
			assert.True(t, ok, "Goroutine %d: getRunID should return true", id)
			assert.Equal(t, int64(12345), runID, "Goroutine %d: runID should be 12345", id)
		}(i)
	}
	wg.Wait()
}

// TestContextIsolation tests that different contexts maintain isolation.
func TestContextIsolation(t *testing.T) {
	baseCtx := context.Background()
	ctx1 := withRunID(baseCtx, 1)
	ctx2 := withRunID(baseCtx, 2)

	id1, ok1 := getRunID(ctx1)
	assert.True(t, ok1)
	assert.Equal(t, int64(1), id1)

	id2, ok2 := getRunID(ctx2)
	assert.True(t, ok2)
	assert.Equal(t, int64(2), id2)

	id3, ok3 := getRunID(baseCtx)
	assert.False(t, ok3)
	assert.Equal(t, int64(0), id3)

	// A child context keeps the run ID of its parent
	child, cancel := context.WithCancel(ctx1)
	defer cancel()
	idChild, okChild := getRunID(child)
	assert.True(t, okChild)
	assert.Equal(t, int64(1), idChild)
}
