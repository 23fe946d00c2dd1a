package cache

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskListKey(t *testing.T) {
	t.Parallel()
	user := uuid.New()

	a := TaskListKey(user, 1, "status=pending")
	b := TaskListKey(user, 1, "status=completed")
	c := TaskListKey(user, 2, "status=pending")

	assert.NotEqual(t, a, b, "different filters must not share a key")
	assert.NotEqual(t, a, c, "different generations must not share a key")
	assert.Equal(t, a, TaskListKey(user, 1, "status=pending"))
	assert.True(t, strings.HasPrefix(a, keyPrefix+"user:"+user.String()))
	assert.NotContains(t, a, "pending", "filter text is hashed")
}

func TestKeysAreDistinct(t *testing.T) {
	t.Parallel()
	user := uuid.New()

	keys := []string{
		UserGenerationKey(user),
		TaskListKey(user, 0, ""),
		TaskStatsKey(user, 0),
		RevokedTokenKey(user.String()),
	}
	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}
