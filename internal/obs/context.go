package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern pins the matched chi pattern on the context so metrics
// and logs label by route template instead of raw URLs full of register and
// sale ids.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the pinned pattern, or "" when routing has
// not resolved one.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(routePatternKey{}).(string)
	return v
}
