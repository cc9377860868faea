// Package cli implements the lore command line client.
//
// Commands:
//
//	login         sign in and persist the token pair
//	logout        sign out and clear stored tokens
//	whoami        print the signed in user
//	groups        list groups
//	quotes        list quotes, optionally of one group
//	achievements  list achievements of a group
//	count-quotes  fetch every quote page and print the count
//	summary       print user, group and quote totals fetched concurrently
//
// Connection settings come from flags or LORE_HOST, LORE_PORT and LORE_SCHEME,
// a .env file in the working directory is loaded first when present.
package cli
