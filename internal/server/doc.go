// Package server provides HTTP routing, middleware and the server lifecycle for the web listing.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally. Routes are registered as method patterns
// ("GET /{genre}"), so wildcards are read with [http.Request.PathValue] and other methods get 405.
//
// # Middleware
//
// [Logging] writes one charmbracelet/log line per request and [Recover] converts panics into 500 responses.
//
// # Lifecycle
//
// [Serve] starts an [http.Server] and shuts it down gracefully when its context is canceled.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
