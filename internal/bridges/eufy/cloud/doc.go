// Package cloud implements the HTTP transport to the vendor cloud API.
//
// A Client authenticates with account credentials, keeps the session token
// and sends JSON requests on behalf of the camera facade. It satisfies
// camera.API.
//
// Every response is wrapped in an envelope {code, msg, data}; a non-zero
// code is reported as *APIError, a non-2xx HTTP status as *StatusError.
// Requests are not retried and responses are not cached.
//
// Thread Safety: all methods are safe for concurrent use.
package cloud
