// Package auth manages the signed in session of a lore API client.
//
// A Session logs in, registers and logs out users, keeps the current user and
// raises a single invalidation event when the session ends, either explicitly
// or because the token refresh failed in the transport sub-package.
//
// Sub-packages:
//   - store: token persistence (memory, afs file, scy encrypted).
//   - transport: bearer injecting http.RoundTripper with coalesced token refresh.
//   - mock: in-memory lore API backend for tests.
package auth
