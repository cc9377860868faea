// Package store defines the token store holding the session credential pair.
//
// A Store is a small asynchronous-style key-value interface over two named
// secrets (access and refresh token). Absence is represented by deletion,
// never by an empty value. The package ships an in-memory store, an afs backed
// file store and a scy backed store that encrypts secrets at rest.
package store
