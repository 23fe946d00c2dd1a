package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopJob() Job {
	return NewFuncJob("noop", func(context.Context) error { return nil })
}

func TestJobQueue_Enqueue(t *testing.T) {
	q := NewJobQueue(2, setupTestLogger())

	require.NoError(t, q.Enqueue(noopJob()))
	require.NoError(t, q.Enqueue(noopJob()))

	err := q.Enqueue(noopJob())
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Len(t, q.GetChannel(), 2)
}

func TestJobQueue_Close(t *testing.T) {
	q := NewJobQueue(2, setupTestLogger())
	first := noopJob()
	require.NoError(t, q.Enqueue(first))

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(noopJob()), ErrQueueClosed)

	got, ok := <-q.GetChannel()
	require.True(t, ok, "queued jobs survive Close")
	assert.Equal(t, first.ID(), got.ID())

	_, ok = <-q.GetChannel()
	assert.False(t, ok)
}

func TestJobQueue_MinimumSize(t *testing.T) {
	q := NewJobQueue(0, setupTestLogger())
	assert.Equal(t, 1, cap(q.GetChannel()))
}
