package param

import "context"

// Fetcher resolves secrets and lists from an external parameter source.
type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}
