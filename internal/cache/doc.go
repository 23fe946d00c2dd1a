// Package cache provides the key/value cache behind per-user task lists,
// statistics and the access-token revocation list.
//
// Two backends implement Cache: RedisCache for deployments that configure a
// Redis URL, and MemoryCache for single-process runs and tests. TaskCache
// layers per-user generation counters on top so a single INCR invalidates
// every cached list and statistic of a user.
package cache
