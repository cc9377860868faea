// Package lore provides a configured client for the lore API.
//
// NewClient wires the token store, the authenticating transport with its
// coalesced token refresh, the client facade, the signed in session and the
// typed endpoints from a single ClientOptions value. Options can be populated
// from CLI flags, YAML/JSON configuration or the environment:
//
//	LORE_HOST   api host (required)
//	LORE_PORT   api port, 8000 by default
//	LORE_SCHEME http by default
//
// Example:
//
//	options, _ := lore.ClientOptionsFromEnv(".env")
//	cli, _ := lore.NewClient(options)
//	_, _ = cli.Session.Login(ctx, email, password)
//	groups := cli.Groups()
//	_ = groups.FetchNextPage(ctx)
package lore
