package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	days    int
	deleted int64
	err     error
}

func (c *fakeCleaner) CleanupOldTasks(_ context.Context, days int) (int64, error) {
	c.days = days
	return c.deleted, c.err
}

func TestCleanupJob(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 3}
	job := NewCleanupJob(cleaner, 90, setupTestLogger())

	assert.Equal(t, JobTypeTaskCleanup, job.Type())
	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, 90, cleaner.days)
}

func TestCleanupJob_Error(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("db down")}
	job := NewCleanupJob(cleaner, 30, setupTestLogger())

	err := job.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestCleanupJobFactory(t *testing.T) {
	factory := CleanupJobFactory(&fakeCleaner{}, 30, setupTestLogger())
	a, b := factory(), factory()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, JobTypeTaskCleanup, a.Type())
}
