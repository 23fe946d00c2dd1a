// Package middleware holds the HTTP middleware shared by the API routes:
// trace IDs and context loggers, request logging, bearer-token
// authentication and the administrator gate.
package middleware
