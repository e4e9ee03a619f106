package signpost

// matchKind is the tri-state dispatch verdict: NotFound, a single
// unambiguous winner, or Ambiguous.
type matchKind uint8

const (
	matchNone matchKind = iota
	matchOne
	matchMany
)

// match is the per-request verdict carried up through the query-node and
// dispatch-tree walks. The zero value is matchNone, the identity element of
// unionMatch.
type match struct {
	kind matchKind
	proc *Processor

	// subpath is filled in by the dispatch-tree walk (not by the query
	// nodes themselves) once a winning match is known to originate from a
	// subpath-capable leaf.
	subpath []string

	// queryValue is whatever the winning query parser produced: nil for
	// EmptyParser, a SerialParser.ParseResult() map, or an
	// EntireParser.Value().
	queryValue interface{}
}

// unionMatch composes two verdicts. It is commutative and associative, with
// matchNone as the identity and matchMany ("Ambiguous") absorbing: exactly
// the required algebra.
func unionMatch(a, b match) match {
	if a.kind == matchNone {
		return b
	}
	if b.kind == matchNone {
		return a
	}
	if a.kind == matchMany || b.kind == matchMany {
		return match{kind: matchMany}
	}
	// Both matchOne. The same processor reached via two paths (e.g. a
	// wildcard subtree and a specific subtree both naming it) is not a
	// genuine ambiguity.
	if a.proc == b.proc {
		return a
	}
	return match{kind: matchMany}
}

// queryNode is a path-tree leaf's query sub-engine: given the request's
// query, it selects among the responses registered at that leaf. A queryNode
// is itself immutable and shared across every concurrent Dispatch hitting
// its leaf; it leases a private parser instance from its ParserArena for
// each call rather than mutating any state of its own.
type queryNode interface {
	dispatch(q Query) match
}

// ---- EmptyQuery -----------------------------------------------------------

type emptyQueryNode struct {
	proc  *Processor
	arena *ParserArena
}

func (n *emptyQueryNode) dispatch(q Query) match {
	p := n.arena.LeaseEmpty()
	defer n.arena.ReleaseEmpty(p)

	for _, item := range q {
		p.feedItem(item)
	}
	if p.Status() == StatusComplete {
		return match{kind: matchOne, proc: n.proc}
	}
	return match{kind: matchNone}
}

// ---- EntireQuery ------------------------------------------------------------

type entireQueryNode struct {
	proc  *Processor
	arena *ParserArena
}

func (n *entireQueryNode) dispatch(q Query) match {
	p := n.arena.LeaseEntire()
	defer n.arena.ReleaseEntire(p)

	p.feedAll(q)
	if p.Status() == StatusComplete {
		return match{kind: matchOne, proc: n.proc, queryValue: p.Value()}
	}
	return match{kind: matchNone}
}

// ---- SerialQuery ------------------------------------------------------------

type serialQueryNode struct {
	proc  *Processor
	arena *ParserArena
}

func (n *serialQueryNode) dispatch(q Query) match {
	p := n.arena.LeaseSerial()
	defer n.arena.ReleaseSerial(p)

	for _, item := range q {
		p.feedItem(item)
		if p.Status() == StatusFailure {
			break
		}
	}
	if p.Status() != StatusFailure {
		p.finish()
	}
	if p.Status() == StatusComplete {
		result, _ := p.ParseResult()
		return match{kind: matchOne, proc: n.proc, queryValue: result}
	}
	return match{kind: matchNone}
}

// ---- SerialQueries ----------------------------------------------------------

// serialCandidate pairs a processor with the arena leasing serial parser
// instances that test requests against it within a SerialQueries node.
type serialCandidate struct {
	proc  *Processor
	arena *ParserArena
}

// serialQueriesNode implements the SerialQueries algorithm: feed
// every query item to every still-active candidate in order, dropping any
// candidate that fails mid-scan; at end-of-query, collect the candidates
// that completed. Each dispatch call leases one fresh parser per candidate
// so concurrent callers never share assignment state.
type serialQueriesNode struct {
	candidates []serialCandidate
}

func (n *serialQueriesNode) dispatch(q Query) match {
	parsers := make([]*SerialParser, len(n.candidates))
	active := make([]bool, len(n.candidates))
	for i, c := range n.candidates {
		parsers[i] = c.arena.LeaseSerial()
		active[i] = true
	}
	defer func() {
		for i, c := range n.candidates {
			c.arena.ReleaseSerial(parsers[i])
		}
	}()

	for _, item := range q {
		for i := range n.candidates {
			if !active[i] {
				continue
			}
			parsers[i].feedItem(item)
			if parsers[i].Status() == StatusFailure {
				active[i] = false
			}
		}
	}

	var completes []int
	for i := range n.candidates {
		if !active[i] {
			continue
		}
		parsers[i].finish()
		if parsers[i].Status() == StatusComplete {
			completes = append(completes, i)
		}
	}

	switch len(completes) {
	case 0:
		return match{kind: matchNone}
	case 1:
		winner := completes[0]
		result, _ := parsers[winner].ParseResult()
		return match{kind: matchOne, proc: n.candidates[winner].proc, queryValue: result}
	default:
		return match{kind: matchMany}
	}
}

// ---- EntireQueries ------------------------------------------------------------

type entireCandidate struct {
	proc  *Processor
	arena *ParserArena
}

// entireQueriesNode implements the EntireQueries algorithm: feed the
// full query to every parser, then apply identical zero/one/many verdict
// logic to those reporting complete. Each dispatch call leases one fresh
// parser per candidate so concurrent callers never share evaluation state.
type entireQueriesNode struct {
	candidates []entireCandidate
}

func (n *entireQueriesNode) dispatch(q Query) match {
	parsers := make([]*EntireParser, len(n.candidates))
	for i, c := range n.candidates {
		parsers[i] = c.arena.LeaseEntire()
	}
	defer func() {
		for i, c := range n.candidates {
			c.arena.ReleaseEntire(parsers[i])
		}
	}()

	var completes []int
	for i := range n.candidates {
		parsers[i].feedAll(q)
		if parsers[i].Status() == StatusComplete {
			completes = append(completes, i)
		}
	}

	switch len(completes) {
	case 0:
		return match{kind: matchNone}
	case 1:
		winner := completes[0]
		return match{kind: matchOne, proc: n.candidates[winner].proc, queryValue: parsers[winner].Value()}
	default:
		return match{kind: matchMany}
	}
}

// ---- MixedQueries ------------------------------------------------------------

// mixedQueriesNode runs its serial and entire sub-nodes independently and
// unions their verdicts under NotFound identity: if both produced
// a match, the combined result is Ambiguous.
type mixedQueriesNode struct {
	serial queryNode
	entire queryNode
}

func (n *mixedQueriesNode) dispatch(q Query) match {
	var m match
	if n.serial != nil {
		m = unionMatch(m, n.serial.dispatch(q))
	}
	if n.entire != nil {
		m = unionMatch(m, n.entire.dispatch(q))
	}
	return m
}

// queryBucket partitions the responses registered at a single path-tree
// leaf by query-parser family.
type queryBucket struct {
	empty  []*Processor
	serial []*Processor
	entire []*Processor
}

func newQueryBucket() *queryBucket {
	return &queryBucket{}
}

// add places proc into the bucket matching its parser's kind. Unknown kinds
// are reported to the caller as a build-time invariant violation rather
// than silently accepted.
func (b *queryBucket) add(proc *Processor) bool {
	switch proc.QueryParser.Kind() {
	case KindEmpty:
		b.empty = append(b.empty, proc)
	case KindSerial:
		b.serial = append(b.serial, proc)
	case KindEntire:
		b.entire = append(b.entire, proc)
	default:
		return false
	}
	return true
}

// build materialises the query-node for this leaf via the parser-family
// cardinality table. It returns nil if the bucket is empty (no content at
// this leaf). Every node constructed here owns a ParserArena templated on
// the registered parser's shape rather than the registered parser instance
// itself, so the tree's own builder-time parser never leaks into a live
// Dispatch call.
func (b *queryBucket) build() queryNode {
	ne, ns, nn := len(b.empty), len(b.serial), len(b.entire)

	switch {
	case ne == 0 && ns == 0 && nn == 0:
		return nil

	case ne == 1 && ns == 0 && nn == 0:
		return &emptyQueryNode{proc: b.empty[0], arena: NewParserArena()}

	case ne == 0 && ns == 0 && nn == 1:
		return &entireQueryNode{proc: b.entire[0], arena: NewEntireParserArena(b.entire[0].QueryParser.(*EntireParser))}

	case ne == 0 && ns == 1 && nn == 0:
		return &serialQueryNode{proc: b.serial[0], arena: NewSerialParserArena(b.serial[0].QueryParser.(*SerialParser))}

	case nn == 0 && (ns >= 2 || (ne == 1 && ns >= 1)):
		// SerialQueries, lifting a lone empty-query response into a
		// serial candidate with no slots (it completes iff fed no
		// items, which is exactly EmptyParser's contract).
		cands := make([]serialCandidate, 0, ns+ne)
		for _, p := range b.empty {
			cands = append(cands, serialCandidate{proc: p, arena: NewSerialParserArena(NewSerialParser())})
		}
		for _, p := range b.serial {
			cands = append(cands, serialCandidate{proc: p, arena: NewSerialParserArena(p.QueryParser.(*SerialParser))})
		}
		return &serialQueriesNode{candidates: cands}

	case ns == 0 && ne == 0 && nn >= 2:
		cands := make([]entireCandidate, 0, nn)
		for _, p := range b.entire {
			cands = append(cands, entireCandidate{proc: p, arena: NewEntireParserArena(p.QueryParser.(*EntireParser))})
		}
		return &entireQueriesNode{candidates: cands}

	default:
		// Mixed with entire: build serial and entire sub-nodes
		// independently (possibly re-entering this same table for
		// the serial-only portion) and combine via MixedQueries.
		var serialSub queryNode
		if ns+ne > 0 {
			sub := &queryBucket{empty: b.empty, serial: b.serial}
			serialSub = sub.build()
		}
		var entireSub queryNode
		if nn > 0 {
			sub := &queryBucket{entire: b.entire}
			entireSub = sub.build()
		}
		return &mixedQueriesNode{serial: serialSub, entire: entireSub}
	}
}
