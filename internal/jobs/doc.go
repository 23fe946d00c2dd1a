// Package jobs runs background work on a fixed pool of workers fed by a
// bounded in-memory queue, plus a ticker-driven scheduler for recurring jobs
// such as the task retention sweep.
package jobs
