// Package api implements the HTTP and WebSocket front of tellhub.
//
// This package provides:
//   - The WebSocket endpoint (default /ws) where each connection becomes a
//     client session
//   - GET /api/v1/health for the database and the device listing
//   - GET /api/v1/stats for live session and subscriber counts
//   - Middleware stack (request ID, logging, recovery)
//
// # Architecture
//
// The server only moves frames. A wsConn adapts each upgraded connection to
// the session transport, adds ping/pong keepalive and write deadlines, and the
// session takes it from there. The server tracks live sessions so stats can
// count them and Close can end them.
package api
