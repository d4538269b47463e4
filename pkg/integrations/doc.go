// Package integrations provides the shared HTTP plumbing for registry clients.
//
// [Client] wraps an *http.Client with default headers, a two-line caching
// helper ([Client.Cached]) backed by a [cache.Cache], retry on transient
// failures, and the observability HTTP/cache hooks. Registry-specific
// clients (currently only [npm]) embed it.
//
// # Errors
//
// [ErrNotFound] is returned for 404 responses and is never retried or
// cached. [ErrNetwork] wraps transport failures and non-2xx statuses; 5xx
// and 429 responses are additionally marked retryable.
package integrations
