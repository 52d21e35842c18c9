// Package httpapi serves the tokenguard engine over HTTP with chi.
//
// Routes:
//
//	POST /auth/signup   form or JSON email/password, 201 with the principal
//	POST /auth/login    form or JSON email/password, token pair
//	POST /auth/refresh  bearer refresh token, new token pair
//	POST /auth/logout   bearer token, 204 after revoking it
//	GET  /auth/me       bearer access token, the principal
//	GET  /healthz       Redis reachability
//	GET  /metrics       Prometheus exposition
//
// Errors are written as RFC7807 problem documents.
package httpapi
