package globals

import (
	"context"

	"modfetch/lib/scrapers/smods/catalog"
	"modfetch/lib/scrapers/smods/core"
	"modfetch/services/fetch"
)

type key struct{}

// Value is everything the subcommands share for one invocation.
type Value struct {
	Config  fetch.Config
	Session *core.Session
	Catalog catalog.Store
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
