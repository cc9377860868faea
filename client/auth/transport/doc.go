// Package transport implements the authenticated http.RoundTripper used by the
// lore client.
//
// The RoundTripper attaches the stored access token as a bearer header to every
// request that is not an authentication endpoint. When the server answers
// `401 Unauthorized` it performs a single coordinated token refresh, shared by
// all requests that fail while the refresh is in flight, and replays the
// original request exactly once with the new token. A rejected refresh clears
// the stored credentials and reports the session as expired.
package transport
