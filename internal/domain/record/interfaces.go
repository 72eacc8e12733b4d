package record

import "context"

// Provider supplies the complete dataset in one call. It never pages or
// filters on behalf of the engine.
type Provider interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// StatusLister lists the statuses offered as filter choices.
type StatusLister interface {
	ListStatuses() []Status
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) ([]Record, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context) ([]Record, error) {
	return f(ctx)
}
