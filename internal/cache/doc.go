// Package cache keeps responses of a remote profile service on disk for a
// fixed TTL.
//
// Entries are JSON files named by the SHA-256 of the request, so repeated
// list, compare and field requests within the TTL do not reach the server.
// The cache is used only in front of the remote source; local sources are
// already as fast as the cache.
package cache
