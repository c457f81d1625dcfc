package complaint

import (
	"civicdesk/backend/internal/models"
	"context"
	"errors"
)

// Notifier receives complaint events after the transition has committed.
type Notifier interface {
	Notify(ctx context.Context, ev models.ComplaintEvent) error
}

// MultiNotifier fans one event out to several sinks. Every sink is tried; the
// returned error joins the individual failures.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, ev models.ComplaintEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type actorKey struct{}

// WithActor attaches the id of the acting user to ctx. It is recorded in the
// audit trail of every transition performed with that context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the acting user stored by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
