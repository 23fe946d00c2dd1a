package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/taskboard/taskboard-api/internal/domain"
)

// TaskCache caches task listings and statistics per user. Every entry key
// embeds the user's current generation; InvalidateUser bumps the generation
// so stale entries become unreachable and age out through their TTL.
//
// Cache failures never surface to callers: reads report a miss and writes
// are dropped, both with a warning.
type TaskCache struct {
	cache    Cache
	logger   *slog.Logger
	listTTL  time.Duration
	statsTTL time.Duration
}

// NewTaskCache creates a TaskCache. A nil logger falls back to slog.Default.
func NewTaskCache(c Cache, logger *slog.Logger, listTTL, statsTTL time.Duration) *TaskCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskCache{
		cache:    c,
		logger:   logger.With(slog.String("component", "task_cache")),
		listTTL:  listTTL,
		statsTTL: statsTTL,
	}
}

func (c *TaskCache) generation(ctx context.Context, userID uuid.UUID) (int64, bool) {
	raw, err := c.cache.Get(ctx, UserGenerationKey(userID))
	if errors.Is(err, ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		c.logger.WarnContext(ctx, "failed to read cache generation",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return 0, false
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		c.logger.WarnContext(ctx, "corrupt cache generation",
			slog.String("user_id", userID.String()))
		return 0, false
	}
	return gen, true
}

func (c *TaskCache) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.WarnContext(ctx, "cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		_ = c.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (c *TaskCache) store(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	if err := c.cache.Set(ctx, key, raw, ttl); err != nil {
		c.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// Generation is the user's cache generation observed by a lookup. A reader
// passes it back when storing what it loaded from the database, so a result
// read before an invalidation lands under a generation nothing reads anymore.
type Generation struct {
	value int64
	valid bool
}

// LoadList returns the cached listing for the filter key, if any, together
// with the generation to store a fresh listing under on a miss.
func (c *TaskCache) LoadList(
	ctx context.Context,
	userID uuid.UUID,
	filterKey string,
) (*domain.Page[domain.Task], Generation, bool) {
	gen, ok := c.generation(ctx, userID)
	if !ok {
		return nil, Generation{}, false
	}
	var page domain.Page[domain.Task]
	if !c.load(ctx, TaskListKey(userID, gen, filterKey), &page) {
		return nil, Generation{value: gen, valid: true}, false
	}
	return &page, Generation{value: gen, valid: true}, true
}

// StoreList caches a listing under gen, which must come from the LoadList
// call made before the listing was read.
func (c *TaskCache) StoreList(
	ctx context.Context,
	userID uuid.UUID,
	gen Generation,
	filterKey string,
	page *domain.Page[domain.Task],
) {
	if !gen.valid {
		return
	}
	c.store(ctx, TaskListKey(userID, gen.value, filterKey), page, c.listTTL)
}

// LoadStats returns the user's cached statistics, if any, together with the
// generation to store fresh statistics under on a miss.
func (c *TaskCache) LoadStats(ctx context.Context, userID uuid.UUID) (*domain.TaskStatistics, Generation, bool) {
	gen, ok := c.generation(ctx, userID)
	if !ok {
		return nil, Generation{}, false
	}
	var stats domain.TaskStatistics
	if !c.load(ctx, TaskStatsKey(userID, gen), &stats) {
		return nil, Generation{value: gen, valid: true}, false
	}
	return &stats, Generation{value: gen, valid: true}, true
}

// StoreStats caches the user's statistics under gen.
func (c *TaskCache) StoreStats(ctx context.Context, userID uuid.UUID, gen Generation, stats *domain.TaskStatistics) {
	if !gen.valid {
		return
	}
	c.store(ctx, TaskStatsKey(userID, gen.value), stats, c.statsTTL)
}

// InvalidateUser makes every cached entry of the user unreachable.
func (c *TaskCache) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if _, err := c.cache.Incr(ctx, UserGenerationKey(userID)); err != nil {
		c.logger.WarnContext(ctx, "failed to invalidate user cache",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}
