/*
Package gqlx is a small client for the banking API's GraphQL-style endpoint.

Every call names an operation, carries a variables bag and a cache
directive:

	client := gqlx.NewClient("https://bank.example.com",
		gqlx.WithTokenSource(machine.Token),
		gqlx.WithRateLimit(10, 20),
	)

	var out struct {
		Shares gqlx.Connection[domain.Share] `json:"shares"`
	}
	err := client.Do(ctx, gqlx.Request{
		Operation: "shares",
		Variables: map[string]any{"first": 25},
		Policy:    gqlx.CacheFirst,
	}, &out)

# Cache directives

CacheFirst answers from the in-memory response cache when the same operation
was already fetched with the same variables, and goes to the network
otherwise. NetworkOnly always goes to the network and refreshes the cached
entry. Invalidate and Reset drop entries.

# Errors

Server reported errors come back as *Error, non-2xx responses as *HTTPError.
Transport failures are wrapped with %w. The client never retries.
*/
package gqlx
