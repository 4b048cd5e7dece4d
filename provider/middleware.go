package provider

// Middleware wraps a RequestResponse. Wrappers in this package keep the
// inner Name and IsAvailable and forward Close.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares so the first one is outermost:
// Chain(a, b, c)(t) == a(b(c(t))). Nil entries are skipped.
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		wrapped := inner
		for i := len(middlewares) - 1; i >= 0; i-- {
			if mw := middlewares[i]; mw != nil {
				wrapped = mw(wrapped)
			}
		}
		return wrapped
	}
}
