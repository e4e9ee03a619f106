package signpost

// GroupAttributes is a mutable-during-build record of incident and error
// callbacks attached to a subtree. Attributes cascade along the path axis
// only.
type GroupAttributes struct {
	// OnIncident is consulted first when the pipeline needs to render an
	// incident; if it returns a non-nil *ResponseContent, that is used in
	// place of the incident's default status response.
	OnIncident IncidentCallback

	// OnError is invoked (in addition to OnIncident) whenever a
	// ProcessingFailed incident is produced, for side-effecting recovery
	// such as logging or alerting. It never influences what is sent to
	// the client.
	OnError func(err error, rc *RequestContext)
}

// mergeAttrs combines incoming into existing: later observation wins per
// field, but both are retained if the fields differ (i.e. a nil field in
// incoming does not clobber a previously-set field in existing).
func mergeAttrs(existing, incoming GroupAttributes) GroupAttributes {
	out := existing
	if incoming.OnIncident != nil {
		out.OnIncident = incoming.OnIncident
	}
	if incoming.OnError != nil {
		out.OnError = incoming.OnError
	}
	return out
}

// attrAccumulator is the per-request attribute-cascade accumulator:
// group_attrs tracks the attributes observed at the current path level of
// the current subtree traversal; resolved_attrs is the committed result for
// the path level of the eventual winning response. It is threaded by
// reference through a single dispatch call's entire tree walk, so that
// contributions from parallel subtrees (e.g. a method-wildcard subtree
// visited before the exact-method subtree) are reconciled in one place.
type attrAccumulator struct {
	groupSet   bool
	groupLevel int
	groupAttrs GroupAttributes

	resolvedSet   bool
	resolvedLevel int
	resolvedAttrs GroupAttributes
}

// observe folds attrs, seen at the given path level, into the accumulator.
func (a *attrAccumulator) observe(level int, attrs GroupAttributes) {
	if !a.groupSet || level >= a.groupLevel {
		if !a.groupSet {
			a.groupAttrs = attrs
		} else {
			a.groupAttrs = mergeAttrs(a.groupAttrs, attrs)
		}
		a.groupLevel = level
		a.groupSet = true
		return
	}

	// Traversal moved to a shallower parallel branch: commit the deeper
	// group first, then start fresh at the new, shallower level.
	a.commit()
	a.groupAttrs = attrs
	a.groupLevel = level
	a.groupSet = true
}

// commit folds the current group_attrs into resolved_attrs if its level
// exceeds the previously committed level.
func (a *attrAccumulator) commit() {
	if !a.groupSet {
		return
	}
	if !a.resolvedSet || a.groupLevel > a.resolvedLevel {
		a.resolvedAttrs = a.groupAttrs
		a.resolvedLevel = a.groupLevel
		a.resolvedSet = true
	}
}

// final commits any pending group_attrs and returns the resolved result.
func (a *attrAccumulator) final() GroupAttributes {
	a.commit()
	return a.resolvedAttrs
}
