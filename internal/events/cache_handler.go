package events

import (
	"context"

	"github.com/google/uuid"
)

// UserCacheInvalidator drops everything cached for a user.
type UserCacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

// CacheInvalidationHandler invalidates the event owner's cached task lists
// and statistics.
type CacheInvalidationHandler struct {
	cache UserCacheInvalidator
}

var _ EventHandler = (*CacheInvalidationHandler)(nil)

// NewCacheInvalidationHandler creates a CacheInvalidationHandler.
func NewCacheInvalidationHandler(c UserCacheInvalidator) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{cache: c}
}

// HandleEvent implements EventHandler.
func (h *CacheInvalidationHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	if event.UserID == uuid.Nil {
		return nil
	}
	h.cache.InvalidateUser(ctx, event.UserID)
	return nil
}
