// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. AuthService: registration, login, token refresh and logout.
//
// 2. TaskService: a user's own tasks, including cached listings and
// statistics, ordering, search suggestions and the retention sweep.
//
// 3. AdminService: cross-user statistics, user management and moderation.
//
// Services receive their dependencies through constructor injection, apply
// transactional boundaries with store.RunInTransaction where an operation
// spans several statements, and return the sentinel errors below (or
// domain validation errors) for the API layer to map onto status codes.
package service
