package signpost

import (
	"fmt"
	"strconv"
	"time"
)

// QueryItem is a single (name, optional-value) pair from a request's URL
// query. A request's query is an ordered sequence of items; order carries no
// semantic weight except as the order in which serial parsers observe them.
type QueryItem struct {
	Name     string
	Value    string
	HasValue bool
}

// Query is the ordered sequence of QueryItems decoded from a request's URL.
type Query []QueryItem

// Status is the observable state of a QueryParser after a parse call.
type Status uint8

const (
	// StatusIncomplete means the parser has not yet seen enough to decide.
	StatusIncomplete Status = iota
	// StatusComplete means the parser accepts the query it has observed.
	StatusComplete
	// StatusFailure means the parser rejects the query it has observed.
	StatusFailure
)

// ParserKind discriminates the three query-parser families. This is
// the tagged-variant replacement for an inheritance hierarchy called for by
// the design notes: the query-node builder switches on Kind() rather than
// dispatching through a polymorphic interface method.
type ParserKind uint8

const (
	KindEmpty ParserKind = iota
	KindSerial
	KindEntire
)

// QueryParser is the contract shared by all three parser families: reset
// back to the initial state, and report the status observed after any parse
// call. Parsers have mutable internal state and MUST be reset after every
// inspection (success or failure) so a single instance can serve many
// requests; see the per-worker parser lease in arena.go.
type QueryParser interface {
	Kind() ParserKind
	Reset()
	Status() Status
}

// ---- Empty parser -------------------------------------------------------

// EmptyParser completes if and only if the request's query is empty or
// absent. Feeding it any query item transitions it to StatusFailure.
type EmptyParser struct {
	status Status
}

// NewEmptyParser returns a ready-to-use EmptyParser.
func NewEmptyParser() *EmptyParser {
	return &EmptyParser{status: StatusComplete}
}

func (p *EmptyParser) Kind() ParserKind { return KindEmpty }
func (p *EmptyParser) Status() Status   { return p.status }
func (p *EmptyParser) Reset()           { p.status = StatusComplete }

// feedItem transitions the parser to failure; a request with any query item
// is, by definition, not an empty query.
func (p *EmptyParser) feedItem(QueryItem) { p.status = StatusFailure }

// ---- Serial parser -------------------------------------------------------

// SlotCoercer parses a raw query-item value into a typed value, or fails.
// hasValue is false for bare flags such as "?debug" (no "=").
type SlotCoercer func(raw string, hasValue bool) (interface{}, error)

// SerialSlot is one named, typed slot of a SerialParser's shape. A
// SerialSlot is immutable configuration, shared by every parser cloned from
// the same shape (see SerialParser.Clone); per-request assignment state
// lives in the SerialParser instance, never here, so one slot definition
// can back many concurrently-dispatching clones.
type SerialSlot struct {
	Name     string
	Required bool
	Default  interface{}
	Coerce   SlotCoercer
}

// StringSlot coerces a query value to its raw string form (always succeeds,
// including for bare flags, whose value is "").
func StringSlot(name string, required bool) *SerialSlot {
	return &SerialSlot{
		Name:     name,
		Required: required,
		Coerce: func(raw string, hasValue bool) (interface{}, error) {
			return raw, nil
		},
	}
}

// IntSlot coerces a query value to an int64.
func IntSlot(name string, required bool) *SerialSlot {
	return &SerialSlot{
		Name:     name,
		Required: required,
		Coerce: func(raw string, hasValue bool) (interface{}, error) {
			return strconv.ParseInt(raw, 10, 64)
		},
	}
}

// FloatSlot coerces a query value to a float64.
func FloatSlot(name string, required bool) *SerialSlot {
	return &SerialSlot{
		Name:     name,
		Required: required,
		Coerce: func(raw string, hasValue bool) (interface{}, error) {
			return strconv.ParseFloat(raw, 64)
		},
	}
}

// BoolSlot coerces a query value to a bool. A bare flag with no "=" (e.g.
// "?debug") coerces to true.
func BoolSlot(name string, required bool) *SerialSlot {
	return &SerialSlot{
		Name:     name,
		Required: required,
		Coerce: func(raw string, hasValue bool) (interface{}, error) {
			if !hasValue {
				return true, nil
			}
			return strconv.ParseBool(raw)
		},
	}
}

// TimeSlot coerces a query value to a time.Time via RFC 3339.
func TimeSlot(name string, required bool) *SerialSlot {
	return &SerialSlot{
		Name:     name,
		Required: required,
		Coerce: func(raw string, hasValue bool) (interface{}, error) {
			return time.Parse(time.RFC3339, raw)
		},
	}
}

// serialSlotState is the mutable, per-instance half of a SerialSlot: whether
// it has been assigned yet this parse, and the coerced value if so. It is
// never shared between SerialParser instances, even ones cloned from the
// same shape, so two goroutines dispatching through the same leaf
// concurrently can never observe or corrupt each other's assignments.
type serialSlotState struct {
	assigned bool
	value    interface{}
}

// SerialParser consumes query items one at a time against an ordered set of
// named, typed slots. slots and byName describe the parser's shape and are
// immutable after NewSerialParser; state is mutable per-instance and is what
// Clone refreshes for a new concurrent user of the same shape.
type SerialParser struct {
	slots  []*SerialSlot
	byName map[string]int
	state  []serialSlotState
	status Status
}

// NewSerialParser returns a SerialParser over the given slots. Slot names
// must be unique.
func NewSerialParser(slots ...*SerialSlot) *SerialParser {
	byName := make(map[string]int, len(slots))
	for i, s := range slots {
		byName[s.Name] = i
	}
	return &SerialParser{
		slots:  slots,
		byName: byName,
		state:  make([]serialSlotState, len(slots)),
		status: StatusIncomplete,
	}
}

// Clone returns a new SerialParser with the same slot shape (slots/byName
// are shared read-only) but its own fresh, independent assignment state.
// Every concurrent dispatch against a given leaf leases a distinct clone
// rather than mutating a shared instance; see ParserArena.
func (p *SerialParser) Clone() *SerialParser {
	return &SerialParser{
		slots:  p.slots,
		byName: p.byName,
		state:  make([]serialSlotState, len(p.slots)),
		status: StatusIncomplete,
	}
}

func (p *SerialParser) Kind() ParserKind { return KindSerial }
func (p *SerialParser) Status() Status   { return p.status }

// Reset returns the parser to its initial, unassigned state.
func (p *SerialParser) Reset() {
	p.status = StatusIncomplete
	for i := range p.state {
		p.state[i] = serialSlotState{}
	}
}

// feedItem consumes a single query item against the parser's slots.
func (p *SerialParser) feedItem(item QueryItem) {
	if p.status == StatusFailure {
		return
	}

	idx, ok := p.byName[item.Name]
	if !ok {
		p.status = StatusFailure
		return
	}
	slot := p.slots[idx]

	if p.state[idx].assigned {
		// Re-assignment is not an error; treat as "already done".
		return
	}

	v, err := slot.Coerce(item.Value, item.HasValue)
	if err != nil {
		p.status = StatusFailure
		return
	}

	p.state[idx] = serialSlotState{assigned: true, value: v}
}

// finish is called at end-of-query: status becomes StatusComplete iff every
// required slot was assigned.
func (p *SerialParser) finish() {
	if p.status == StatusFailure {
		return
	}
	for i, s := range p.slots {
		if s.Required && !p.state[i].assigned {
			p.status = StatusFailure
			return
		}
	}
	p.status = StatusComplete
}

// ParseResult composes the per-slot results into a single typed map, keyed
// by slot name. Optional slots that were never assigned supply their
// Default. Returns an error if the parser did not complete.
func (p *SerialParser) ParseResult() (map[string]interface{}, error) {
	if p.status != StatusComplete {
		return nil, fmt.Errorf("signpost: serial parser has not completed (status=%v)", p.status)
	}
	out := make(map[string]interface{}, len(p.slots))
	for i, s := range p.slots {
		if p.state[i].assigned {
			out[s.Name] = p.state[i].value
		} else {
			out[s.Name] = s.Default
		}
	}
	return out, nil
}

// hasMandatoryItems reports whether this parser has at least one required
// slot, i.e. whether it cannot complete against an empty query.
func (p *SerialParser) hasMandatoryItems() bool {
	for _, s := range p.slots {
		if s.Required {
			return true
		}
	}
	return false
}

// ---- Entire parser --------------------------------------------------------

// EntireFunc receives the whole query-item sequence in one call and returns
// either a typed value or a failure.
type EntireFunc func(Query) (interface{}, error)

// EntireParser receives the whole query in one call and applies a
// user-supplied function that returns either a typed value or failure.
type EntireParser struct {
	fn     EntireFunc
	status Status
	value  interface{}
}

// NewEntireParser returns an EntireParser wrapping fn.
func NewEntireParser(fn EntireFunc) *EntireParser {
	return &EntireParser{fn: fn, status: StatusIncomplete}
}

// Clone returns a new EntireParser sharing fn (immutable) with fresh,
// independent status/value state.
func (p *EntireParser) Clone() *EntireParser {
	return &EntireParser{fn: p.fn, status: StatusIncomplete}
}

func (p *EntireParser) Kind() ParserKind { return KindEntire }
func (p *EntireParser) Status() Status   { return p.status }

func (p *EntireParser) Reset() {
	p.status = StatusIncomplete
	p.value = nil
}

func (p *EntireParser) feedAll(q Query) {
	v, err := p.fn(q)
	if err != nil {
		p.status = StatusFailure
		return
	}
	p.value = v
	p.status = StatusComplete
}

// Value returns the typed value produced by the last successful feedAll.
func (p *EntireParser) Value() interface{} { return p.value }
