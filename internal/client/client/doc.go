// Package client talks to the story API over HTTP.
//
// # Overview
//
// Client is the transport-agnostic contract used by the services; HTTPClient
// implements it with JSON requests for auth and push subscriptions and a
// multipart/form-data upload for new stories. The bearer token is added by a
// RoundTripper that reads it from a TokenSource (the session) on every
// request, so a login or logout takes effect without rebuilding the client.
//
// # Error Handling
//
// API-level failures (the server answered with "error": true) are returned
// as results, never as Go errors. Go errors are reserved for transport
// problems and are mapped to sentinels that callers match with errors.Is:
// ErrUnavailable (dial failure, timeout, 5xx) and ErrMalformedResponse (the
// body could not be decoded).
//
// The client never touches local storage.
package client
