package signpost

// Group is a convenience wrapper around Builder that prefixes every
// registration with a fixed path, and lets nested groups attach shared
// GroupAttributes without repeating the full DispatchSpec each time.
type Group struct {
	builder *Builder
	prefix  []string
}

// NewGroup returns a Group rooted at the builder with no path prefix.
func NewGroup(builder *Builder) *Group {
	return &Group{builder: builder}
}

// Group returns a child Group whose registrations are all additionally
// prefixed by path, relative to the receiver.
func (g *Group) Group(path ...string) *Group {
	child := make([]string, 0, len(g.prefix)+len(path))
	child = append(child, g.prefix...)
	child = append(child, path...)
	return &Group{builder: g.builder, prefix: child}
}

// Insert registers proc under spec, with spec.Path relative to the group's
// prefix.
func (g *Group) Insert(proc *Processor, spec DispatchSpec) {
	spec.Path = g.resolvePath(spec.Path)
	g.builder.Insert(proc, spec)
}

// Attrs attaches attrs to the group's own prefix path, with spec's other
// fields (methods, users, hosts) narrowing which requests they cascade to.
func (g *Group) Attrs(attrs GroupAttributes, spec DispatchSpec) {
	spec.Path = g.resolvePath(spec.Path)
	g.builder.InsertAttrs(attrs, spec)
}

func (g *Group) resolvePath(path []string) []string {
	if len(g.prefix) == 0 {
		return path
	}
	full := make([]string, 0, len(g.prefix)+len(path))
	full = append(full, g.prefix...)
	full = append(full, path...)
	return full
}
