// Package sessions holds the user and session model and the session stores
// that the auth strategies run on.
//
// Three stores implement Store. MemoryStore never expires sessions.
// ExpiringStore adds a fixed lifetime measured from creation. PersistedStore
// writes every session to a RecordStore (SQL or Redis) and reads it back from
// there, so sessions survive restarts. Expiry is evaluated lazily on lookup;
// nothing sweeps expired entries in the background.
package sessions
