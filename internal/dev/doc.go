// Package dev provides watch mode and the development server.
//
// This package implements:
//   - File watching with fsnotify, falling back to polling
//   - A debounced, single-flight rebuild coordinator
//   - An HTTP API over the current route table
//   - WebSocket notifications when routes change or a build fails
//
// # Architecture
//
//   - Coordinator: turns change notifications into rebuilds. Notifications
//     inside the debounce window (200ms by default) are coalesced, at most one
//     rebuild runs at a time, and a change during a rebuild queues exactly one
//     more.
//   - Session: a Coordinator fed by a file watcher (see Watch).
//   - Server: a Session plus the HTTP API and the route feed.
//
// # Coordinator States
//
//	Idle -> Debouncing -> Building -> Idle
//	Debouncing -> Debouncing            (another change resets the timer)
//	Building -> PendingRebuild -> Building
//	any -> Stopped
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{Config: cfg})
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # HTTP API
//
//	GET /_agreed/routes          full route tree
//	GET /_agreed/routes/{key}    GetRoute(key), 404 when absent
//	GET /_agreed/match?path=...  the exact descriptor and params for a URL
//	GET /_agreed/models          model registry
//	GET /_agreed/navs            navigation tree
//	GET /_agreed/status          coordinator state, last hash, last error
//	GET /_agreed/reload          route feed (WebSocket)
//	GET /metrics                 Prometheus metrics
//
// # Route Feed
//
// Messages on /_agreed/reload are JSON-encoded:
//
//	{"type": "routes", "hash": "...", "status": "written"}
//	{"type": "error", "error": "..."}
//	{"type": "clear"}
//
// On connect a subscriber receives the current routes message and, while the
// last build is failing, the current error. A subscriber that falls 16
// messages behind is disconnected.
package dev
