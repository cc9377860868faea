// Package client implements the lore API client facade.
//
// It routes request descriptors through an authenticating http.RoundTripper and
// exposes three operation shapes:
//   - Query: single GET decoded into a typed value.
//   - Mutate: POST/PATCH/PUT/DELETE with optional success and error callbacks.
//   - InfiniteQuery: a cached, incrementally fetched paginated list.
//
// Responses are mapped onto the error taxonomy of the schema package, so
// callers can use errors.As with *schema.FetchError, *schema.ValidationError,
// *schema.NetworkError or *schema.SchemaError.
//
// Example:
//
//	cli, _ := client.New("http://localhost:8000", client.WithTransport(rt))
//	user, err := client.Query[schema.User](ctx, cli, &client.Descriptor{Path: schema.PathCurrentUser})
//	groups := client.InfiniteQuery[schema.Group](cli, &client.Descriptor{Path: schema.PathGroups})
//	_ = groups.FetchNextPage(ctx)
//	fmt.Println(user.DisplayName(), len(groups.Data().Items))
package client
