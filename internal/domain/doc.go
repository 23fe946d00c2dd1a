// Package domain contains the core business entities of the task board:
// users, tasks, the filters used to query tasks, pagination metadata and
// the statistics reported to users and administrators. It is independent
// of any storage or delivery mechanism.
package domain
