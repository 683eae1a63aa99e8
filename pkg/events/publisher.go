package events

import "context"

// Publisher is implemented by the in-process watermill bridge and by the
// NATS publisher. Emitting is best-effort everywhere: audit fanout must
// never fail a committed operation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
