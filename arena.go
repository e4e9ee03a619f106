package signpost

import "sync"

// ParserArena leases parser instances to a single query-node leaf so that
// concurrent Dispatch calls hitting that leaf never share mutable parser
// state. Each arena is built over one parser shape (a template) and hands
// out clones of it, pooled via sync.Pool to amortize allocation; Lease
// always returns an instance freshly Reset, Release returns it to the pool.
//
// A leaf's query-node holds exactly one ParserArena per parser it needs, not
// a bare parser pointer, so that two goroutines racing through the same leaf
// each get their own clone to mutate.
type ParserArena struct {
	pool sync.Pool
}

// NewParserArena returns an arena of EmptyParser instances. EmptyParser
// carries no shape (only a status), so every lease is a fresh
// NewEmptyParser(); pooling still saves the allocation.
func NewParserArena() *ParserArena {
	return &ParserArena{
		pool: sync.Pool{
			New: func() interface{} { return NewEmptyParser() },
		},
	}
}

// LeaseEmpty borrows an EmptyParser, guaranteed freshly Reset.
func (a *ParserArena) LeaseEmpty() *EmptyParser {
	p := a.pool.Get().(*EmptyParser)
	p.Reset()
	return p
}

// ReleaseEmpty returns p to the arena.
func (a *ParserArena) ReleaseEmpty(p *EmptyParser) {
	a.pool.Put(p)
}

// NewSerialParserArena returns an arena over template's slot shape: every
// lease is a Clone of template, sharing its immutable slot definitions but
// carrying independent assignment state.
func NewSerialParserArena(template *SerialParser) *ParserArena {
	return &ParserArena{
		pool: sync.Pool{
			New: func() interface{} { return template.Clone() },
		},
	}
}

// LeaseSerial borrows a SerialParser clone, guaranteed freshly Reset.
func (a *ParserArena) LeaseSerial() *SerialParser {
	p := a.pool.Get().(*SerialParser)
	p.Reset()
	return p
}

// ReleaseSerial returns p to the arena.
func (a *ParserArena) ReleaseSerial(p *SerialParser) {
	a.pool.Put(p)
}

// NewEntireParserArena returns an arena over template's function: every
// lease is a Clone of template, sharing its immutable EntireFunc but
// carrying independent status/value state.
func NewEntireParserArena(template *EntireParser) *ParserArena {
	return &ParserArena{
		pool: sync.Pool{
			New: func() interface{} { return template.Clone() },
		},
	}
}

// LeaseEntire borrows an EntireParser clone, guaranteed freshly Reset.
func (a *ParserArena) LeaseEntire() *EntireParser {
	p := a.pool.Get().(*EntireParser)
	p.Reset()
	return p
}

// ReleaseEntire returns p to the arena.
func (a *ParserArena) ReleaseEntire(p *EntireParser) {
	a.pool.Put(p)
}
