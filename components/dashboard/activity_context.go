package dashboard

import "context"

// ActivityContext identifies who triggered a dashboard action.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity attaches the actor identifiers used for activity events.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// ActivityFromContext returns the identifiers attached with ContextWithActivity.
func ActivityFromContext(ctx context.Context) (ActivityContext, bool) {
	if ctx == nil {
		return ActivityContext{}, false
	}
	meta, ok := ctx.Value(activityContextKey{}).(ActivityContext)
	return meta, ok
}

func activityContextFrom(ctx context.Context) ActivityContext {
	meta, _ := ActivityFromContext(ctx)
	return meta
}
