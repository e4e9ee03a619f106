package signpost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderExpandsMethodsUsersHosts(t *testing.T) {
	b := NewBuilder(nil)
	b.Insert(&Processor{QueryParser: NewEmptyParser(), Plan: BodyProhibited, Respond: textRespond("ok")}, DispatchSpec{
		Methods: []string{"GET", "POST"},
		Hosts:   []string{"a.example.com", "b.example.com"},
		Path:    []string{"r"},
	})
	tree := b.Build()
	pipeline := NewPipeline(nil)

	for _, method := range []string{"GET", "POST"} {
		for _, host := range []string{"a.example.com", "b.example.com"} {
			resp := dispatchText(t, tree, pipeline, method, "http://"+host+"/r")
			assert.Equal(t, BytesBody("ok"), resp.Body, method+" "+host)
		}
	}

	resp := dispatchText(t, tree, pipeline, "DELETE", "http://a.example.com/r")
	assert.EqualValues(t, 404, resp.Head.Status)
}

func TestBuilderSubdomainExpansionIsOptional(t *testing.T) {
	b := NewBuilder(nil)
	b.Insert(&Processor{QueryParser: NewEmptyParser(), Plan: BodyProhibited, Respond: textRespond("ok")}, DispatchSpec{
		Methods:    []string{"GET"},
		Hosts:      []string{"example.com"},
		Subdomains: []string{"www", "api"},
		Path:       []string{"r"},
	})
	tree := b.Build()
	pipeline := NewPipeline(nil)

	for _, host := range []string{"example.com", "www.example.com", "api.example.com"} {
		resp := dispatchText(t, tree, pipeline, "GET", "http://"+host+"/r")
		assert.Equal(t, BytesBody("ok"), resp.Body, host)
	}

	resp := dispatchText(t, tree, pipeline, "GET", "http://other.example.com/r")
	assert.EqualValues(t, 404, resp.Head.Status)
}

func TestBuilderDuplicateEmptyQueryWarnsAndReplaces(t *testing.T) {
	b := NewBuilder(nil)
	spec := DispatchSpec{Methods: []string{"GET"}, Path: []string{"r"}}
	b.Insert(&Processor{QueryParser: NewEmptyParser(), Plan: BodyProhibited, Respond: textRespond("first")}, spec)
	b.Insert(&Processor{QueryParser: NewEmptyParser(), Plan: BodyProhibited, Respond: textRespond("second")}, spec)

	diags := b.Diagnostics()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "replacing")

	tree := b.Build()
	pipeline := NewPipeline(nil)
	resp := dispatchText(t, tree, pipeline, "GET", "http://host/r")
	assert.Equal(t, BytesBody("second"), resp.Body, "the later insertion replaces the earlier one")
}

func TestBuilderNilQueryParserIsDroppedWithDiagnostic(t *testing.T) {
	b := NewBuilder(nil)
	b.Insert(&Processor{Plan: BodyProhibited, Respond: textRespond("x")}, DispatchSpec{Methods: []string{"GET"}, Path: []string{"r"}})

	diags := b.Diagnostics()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "nil query parser")

	tree := b.Build()
	pipeline := NewPipeline(nil)
	resp := dispatchText(t, tree, pipeline, "GET", "http://host/r")
	assert.EqualValues(t, 404, resp.Head.Status)
}

func TestBuilderInsertAttrsCascadesToDeeperPath(t *testing.T) {
	b := NewBuilder(nil)
	deep := func(Incident, *RequestContext) *ResponseContent { return NewTextResponse(418, "deep") }
	b.InsertAttrs(GroupAttributes{OnIncident: deep}, DispatchSpec{Path: []string{"sub"}})
	b.Insert(&Processor{
		QueryParser: NewSerialParser(StringSlot("need", true)),
		Plan:        BodyProhibited,
		Respond:     textRespond("ok"),
	}, DispatchSpec{Methods: []string{"GET"}, Path: []string{"sub", "r"}})
	tree := b.Build()
	pipeline := NewPipeline(nil)

	resp := dispatchText(t, tree, pipeline, "GET", "http://host/sub/r")
	assert.EqualValues(t, 418, resp.Head.Status, "missing required slot triggers NotFound, rendered via the cascaded attrs")
}

func TestGroupAttrsResolvesPrefix(t *testing.T) {
	b := NewBuilder(nil)
	g := NewGroup(b).Group("admin")
	custom := func(Incident, *RequestContext) *ResponseContent { return NewTextResponse(418, "teapot") }
	g.Attrs(GroupAttributes{OnIncident: custom}, DispatchSpec{})
	g.Insert(&Processor{
		QueryParser: NewSerialParser(StringSlot("need", true)),
		Plan:        BodyProhibited,
		Respond:     textRespond("ok"),
	}, DispatchSpec{Methods: []string{"GET"}, Path: []string{"r"}})
	tree := b.Build()
	pipeline := NewPipeline(nil)

	resp := dispatchText(t, tree, pipeline, "GET", "http://host/admin/r")
	assert.EqualValues(t, 418, resp.Head.Status)
}

func TestGroupResolvesNestedPrefixes(t *testing.T) {
	b := NewBuilder(nil)
	g := NewGroup(b).Group("api").Group("v1")
	g.Insert(&Processor{QueryParser: NewEmptyParser(), Plan: BodyProhibited, Respond: textRespond("nested")},
		DispatchSpec{Methods: []string{"GET"}, Path: []string{"widgets"}})
	tree := b.Build()
	pipeline := NewPipeline(nil)

	resp := dispatchText(t, tree, pipeline, "GET", "http://host/api/v1/widgets")
	assert.Equal(t, BytesBody("nested"), resp.Body)
}
