// Package api implements the HTTP REST API and WebSocket server for the
// Eufy bridge.
//
// This package provides:
//   - REST endpoints for camera state, commands and the command audit trail
//   - WebSocket hub for real-time camera state broadcasts
//   - JWT bearer authentication with ticket-based WebSocket auth
//   - Prometheus metrics at /metrics
//   - Middleware stack (request ID, logging, recovery, request metrics)
//
// # Architecture
//
// The API is a second front door to the same bridge the MQTT bus drives.
// Commands posted over HTTP run through the bridge exactly as MQTT commands
// do, so they publish the same acknowledgement and state messages and land
// in the same audit trail.
//
// # Security
//
// Every route except /api/v1/health and /metrics requires an HS256 token
// signed with security.jwt.secret. Tokens are issued elsewhere; the token
// subject is recorded as the actor of API commands. WebSocket connections
// use single-use tickets so the token never appears in a URL.
package api
