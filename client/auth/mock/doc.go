// Package mock provides an in-process lore API backend that facilitates unit
// testing of the client: authentication endpoints issuing JWT access/refresh
// pairs, rotating refresh tokens and cursor paginated list endpoints.
//
// Every default handler can be replaced, and hooks allow tests to observe or
// delay unauthorized responses and refresh calls.
package mock
