package graph

import (
	"context"

	"github.com/hmans/coursegraph/internal/events"
	"github.com/hmans/coursegraph/internal/store"
	"github.com/rs/zerolog"
)

// Resolver is the root resolver for the GraphQL schema.
// It holds the store every field resolver reads from and writes to.
type Resolver struct {
	Store  store.Store
	Events events.Publisher
	Log    zerolog.Logger
}

// publish emits a mutation event. Delivery failures are logged and never fail the mutation.
func (r *Resolver) publish(ctx context.Context, t events.Type, id string) {
	if r.Events == nil {
		return
	}
	if err := r.Events.Publish(ctx, events.New(t, id)); err != nil {
		r.Log.Warn().Err(err).Str("event", string(t)).Str("id", id).Msg("failed to publish event")
	}
}
