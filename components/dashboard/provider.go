package dashboard

import "context"

// Provider fetches everything a view needs for one refresh cycle.
type Provider interface {
	Fetch(ctx context.Context, meta ViewContext) (ViewData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta ViewContext) (ViewData, error)

// Fetch implements Provider.
func (fn ProviderFunc) Fetch(ctx context.Context, meta ViewContext) (ViewData, error) {
	return fn(ctx, meta)
}

// ViewContext contains the metadata handed to providers.
type ViewContext struct {
	View  ViewDefinition
	Cycle int64
}

// SlotContent is the reshaped content of one slot. A nil Chart means the
// slot renders text only. Err marks a fetch failure scoped to this slot; the
// previous panel content is kept and flagged stale.
type SlotContent struct {
	State   PanelState
	Message string
	Fields  []Field
	Rows    [][]string
	Chart   *ChartSpec
	Err     error
}

// ViewData maps slot codes to their content.
type ViewData map[string]SlotContent

func errorContent(message string) SlotContent {
	return SlotContent{State: PanelError, Message: message}
}
