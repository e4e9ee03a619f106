package signpost

import "fmt"

// Diagnostic is a build-time warning produced by the Schema Builder. The
// duplicate-empty-query "replace with warning" policy is always observable
// here (not only via the Logger).
type Diagnostic struct {
	Message string
	Spec    DispatchSpec
}

// Builder grows a dispatch tree from a stream of (response, dispatch-spec)
// and (attributes, dispatch-spec) insertions, then finalises it into
// an immutable Tree.
type Builder struct {
	root        *methodNode
	redirects   map[string]string
	diagnostics []Diagnostic
	logger      *Logger
}

// NewBuilder returns an empty Builder. A nil logger is replaced by a
// disabled Logger (diagnostics remain available via Diagnostics regardless).
func NewBuilder(logger *Logger) *Builder {
	if logger == nil {
		logger = &Logger{}
	}
	return &Builder{
		root:      &methodNode{exact: map[string]*userNode{}},
		redirects: map[string]string{},
		logger:    logger,
	}
}

// Diagnostics returns the warnings accumulated so far.
func (b *Builder) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), b.diagnostics...)
}

func (b *Builder) warn(spec DispatchSpec, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	b.diagnostics = append(b.diagnostics, Diagnostic{Message: msg, Spec: spec})
	b.logger.Warn(msg)
}

// Insert registers proc for every concrete (method, user, host, path)
// leaf spec expands to.
func (b *Builder) Insert(proc *Processor, spec DispatchSpec) {
	if proc.QueryParser == nil {
		b.warn(spec, "signpost: dropping response with a nil query parser")
		return
	}
	switch proc.QueryParser.Kind() {
	case KindEmpty, KindSerial, KindEntire:
	default:
		b.warn(spec, "signpost: dropping response with an unknown query parser kind")
		return
	}

	if len(spec.Hosts) > 0 {
		for _, alias := range spec.HostAliases {
			b.AddHostAlias(spec.Hosts[0], alias)
		}
	}

	for _, leaf := range expand(spec) {
		node := b.walkCreate(leaf)
		bucket := &node.finalBucket
		if proc.SubpathCapable {
			bucket = &node.subpathBucket
		}
		if *bucket == nil {
			*bucket = newQueryBucket()
		}

		if proc.QueryParser.Kind() == KindEmpty && len((*bucket).empty) > 0 {
			b.warn(spec, "signpost: replacing prior empty-query response at this node")
			(*bucket).empty[0] = proc
			continue
		}

		if !(*bucket).add(proc) {
			b.warn(spec, "signpost: dropping response with an unknown query parser kind")
		}
	}
}

// InsertAttrs merges attrs into the path-level attribute record of every
// concrete leaf spec expands to.
func (b *Builder) InsertAttrs(attrs GroupAttributes, spec DispatchSpec) {
	for _, leaf := range expand(spec) {
		node := b.walkCreate(leaf)
		if node.hasAttrs {
			node.attrs = mergeAttrs(node.attrs, attrs)
		} else {
			node.attrs = attrs
			node.hasAttrs = true
		}
	}
}

// AddHostAlias registers alias as redirecting to canonical, in the
// redirection map. It does not insert any tree entry for alias itself.
func (b *Builder) AddHostAlias(canonical, alias string) {
	b.redirects[normalizeHost(alias)] = normalizeHost(canonical)
}

// concreteLeaf is one fully-concrete (method, user, host, path) combination
// a DispatchSpec expands to.
type concreteLeaf struct {
	method string
	user   string
	host   string
	path   []string
}

// expand computes the cartesian product of the concrete keys
// (methods x users x hosts x subdomains), each inserted at its own leaf.
// Host aliases do not participate here; they only populate the redirect map
// (see Builder.AddHostAlias and Builder.Insert), matching the test-observed
// behaviour where an alias host with no explicit spec of its own never
// gets a real tree entry.
func expand(spec DispatchSpec) []concreteLeaf {
	methods := spec.Methods
	if len(methods) == 0 {
		methods = []string{wildcard}
	}
	users := spec.Users
	if len(users) == 0 {
		users = []string{wildcard}
	}
	hosts := expandHosts(spec)

	leaves := make([]concreteLeaf, 0, len(methods)*len(users)*len(hosts))
	for _, m := range methods {
		for _, u := range users {
			for _, h := range hosts {
				leaves = append(leaves, concreteLeaf{method: m, user: u, host: h, path: spec.Path})
			}
		}
	}
	return leaves
}

// expandHosts computes the host/optional-subdomain half of expansion:
// every host, bare, plus every host prefixed by every optional
// subdomain.
func expandHosts(spec DispatchSpec) []string {
	if len(spec.Hosts) == 0 {
		return []string{wildcard}
	}
	var hosts []string
	for _, h := range spec.Hosts {
		hosts = append(hosts, normalizeHost(h))
		for _, sub := range spec.Subdomains {
			hosts = append(hosts, normalizeHost(sub+"."+h))
		}
	}
	return hosts
}

// walkCreate descends (creating as needed) to the pathNode for leaf.
func (b *Builder) walkCreate(leaf concreteLeaf) *pathNode {
	un := b.childUser(leaf.method)
	hn := childHost(un, leaf.user)
	pn := childPath(hn, leaf.host)
	for _, c := range leaf.path {
		if pn.children == nil {
			pn.children = map[string]*pathNode{}
		}
		child, ok := pn.children[c]
		if !ok {
			child = newPathNode()
			pn.children[c] = child
		}
		pn = child
	}
	return pn
}

func (b *Builder) childUser(method string) *userNode {
	if method == wildcard {
		if b.root.wildcard == nil {
			b.root.wildcard = &userNode{exact: map[string]*hostNode{}}
		}
		return b.root.wildcard
	}
	if n, ok := b.root.exact[method]; ok {
		return n
	}
	n := &userNode{exact: map[string]*hostNode{}}
	b.root.exact[method] = n
	return n
}

func childHost(un *userNode, user string) *hostNode {
	if user == wildcard {
		if un.wildcard == nil {
			un.wildcard = &hostNode{exact: map[string]*pathNode{}}
		}
		return un.wildcard
	}
	if n, ok := un.exact[user]; ok {
		return n
	}
	n := &hostNode{exact: map[string]*pathNode{}}
	un.exact[user] = n
	return n
}

func childPath(hn *hostNode, host string) *pathNode {
	if host == wildcard {
		if hn.wildcard == nil {
			hn.wildcard = newPathNode()
		}
		return hn.wildcard
	}
	if n, ok := hn.exact[host]; ok {
		return n
	}
	n := newPathNode()
	hn.exact[host] = n
	return n
}

// Build materialises the mutable tree into an immutable Tree, converting
// each node's pending query buckets into the query-node selected by the
// parser-family cardinality table.
func (b *Builder) Build() *Tree {
	finalizeMethod(b.root)
	return &Tree{root: b.root, redirects: b.redirects}
}

func finalizeMethod(n *methodNode) {
	if n == nil {
		return
	}
	finalizeUser(n.wildcard)
	for _, u := range n.exact {
		finalizeUser(u)
	}
}

func finalizeUser(n *userNode) {
	if n == nil {
		return
	}
	finalizeHost(n.wildcard)
	for _, h := range n.exact {
		finalizeHost(h)
	}
}

func finalizeHost(n *hostNode) {
	if n == nil {
		return
	}
	finalizePath(n.wildcard)
	for _, p := range n.exact {
		finalizePath(p)
	}
}

func finalizePath(n *pathNode) {
	if n == nil {
		return
	}
	if n.subpathBucket != nil {
		n.subpath = n.subpathBucket.build()
		n.subpathBucket = nil
	}
	if n.finalBucket != nil {
		n.final = n.finalBucket.build()
		n.finalBucket = nil
	}
	for _, c := range n.children {
		finalizePath(c)
	}
}
