// Package imagery finds and prepares pictures for stop panels.
//
// A Resolver turns a search query into raw image bytes. Resolvers never fail:
// every problem collapses to "no image" so a missing picture can only ever
// cost a stop its right-hand column.
package imagery

import "context"

// Resolver looks up an image for a query
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]byte, bool)
}

// Func adapts a plain function to the Resolver interface
type Func func(ctx context.Context, query string) ([]byte, bool)

// Resolve calls f
func (f Func) Resolve(ctx context.Context, query string) ([]byte, bool) {
	return f(ctx, query)
}

type none struct{}

func (none) Resolve(context.Context, string) ([]byte, bool) { return nil, false }

// None never returns an image
var None Resolver = none{}
