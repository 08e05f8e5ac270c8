package resolve

// Context is the runtime data a resolvable expression is evaluated
// against, e.g. the current item's JSON payload or the selected run index.
//
// It is supplied by the hosting application and is read-only here: nothing
// in this package mutates the underlying values. A missing or partially
// populated context is not an error — lookups that miss resolve to the
// Unavailable state instead.
type Context struct {
	vars map[string]any
}

// NewContext wraps vars as a data context. The map is used as-is; callers
// must not mutate it while a resolution pass is running.
func NewContext(vars map[string]any) Context {
	return Context{vars: vars}
}

// EmptyContext returns a context with no bindings. Every identifier lookup
// against it is unavailable.
func EmptyContext() Context {
	return Context{}
}

// Lookup returns the binding for a root identifier such as "$json".
func (c Context) Lookup(name string) (any, bool) {
	if c.vars == nil {
		return nil, false
	}
	v, ok := c.vars[name]
	return v, ok
}

// Names returns how many root bindings the context carries. Used only for
// logging.
func (c Context) Names() int {
	return len(c.vars)
}
