// Package events provides the task change notifications emitted by the
// service layer.
//
// Services emit a TaskEvent after every successful mutation without knowing
// who listens. Handlers registered at startup react to them; the cache
// invalidation handler is the main consumer, bumping the owner's cache
// generation so later reads see the change.
package events
