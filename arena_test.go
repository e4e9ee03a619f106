package signpost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParserArenaLeaseEmptyIsAlwaysReset(t *testing.T) {
	arena := NewParserArena()

	p := arena.LeaseEmpty()
	p.feedItem(QueryItem{Name: "a", HasValue: false})
	assert.Equal(t, StatusFailure, p.Status())
	arena.ReleaseEmpty(p)

	p2 := arena.LeaseEmpty()
	assert.Equal(t, StatusComplete, p2.Status(), "a leased parser is always freshly reset")
}

func TestParserArenaLeaseSerialBuildsOverTemplateShape(t *testing.T) {
	template := NewSerialParser(StringSlot("a", true))
	arena := NewSerialParserArena(template)

	p := arena.LeaseSerial()
	p.feedItem(QueryItem{Name: "a", Value: "1", HasValue: true})
	p.finish()
	assert.Equal(t, StatusComplete, p.Status())
	arena.ReleaseSerial(p)
}

func TestParserArenaLeaseSerialGivesIndependentStatePerLease(t *testing.T) {
	template := NewSerialParser(StringSlot("a", true))
	arena := NewSerialParserArena(template)

	p1 := arena.LeaseSerial()
	p2 := arena.LeaseSerial()

	p1.feedItem(QueryItem{Name: "a", Value: "1", HasValue: true})
	p1.finish()

	assert.Equal(t, StatusComplete, p1.Status())
	assert.Equal(t, StatusIncomplete, p2.Status(), "a second concurrent lease must not observe the first lease's assignment")

	p2.feedItem(QueryItem{Name: "a", Value: "2", HasValue: true})
	p2.finish()

	r1, _ := p1.ParseResult()
	r2, _ := p2.ParseResult()
	assert.Equal(t, "1", r1["a"])
	assert.Equal(t, "2", r2["a"])
}

func TestParserArenaLeaseEntireSharesFuncWithIndependentState(t *testing.T) {
	template := NewEntireParser(func(q Query) (interface{}, error) { return len(q), nil })
	arena := NewEntireParserArena(template)

	p := arena.LeaseEntire()
	p.feedAll(Query{{Name: "a", HasValue: false}})
	assert.Equal(t, StatusComplete, p.Status())
	assert.Equal(t, 1, p.Value())
	arena.ReleaseEntire(p)

	p2 := arena.LeaseEntire()
	assert.Equal(t, StatusIncomplete, p2.Status(), "a freshly leased entire parser carries no prior value")
}
