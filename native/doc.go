// Package native is a storage client facade of a FrostFS-like object storage.
//
// A Client is bound to one storage node endpoint and one identity (P-256 private key).
// Connect performs no network I/O. Every operation is a single request/response round trip
// returning a tagged response: Success with an identifier, or a human-readable Error.
// Operations never return Go errors, so a failed iteration can't abort a load run by accident.
//
// Client and PreparedObject are safe for concurrent use.
package native
