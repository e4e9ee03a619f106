package signpost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestContextParsesURI(t *testing.T) {
	rc, err := NewRequestContext(RequestHead{Method: "get", URI: "http://Example.COM:8080/a/b?x=1", Headers: Headers{}})
	require.NoError(t, err)

	assert.Equal(t, "GET", rc.Method, "method is canonically upper-cased")
	assert.Equal(t, "example.com", rc.Host, "host is lower-cased")
	assert.Equal(t, "8080", rc.Port)
	assert.Equal(t, []string{"a", "b"}, rc.PathComponents)
	assert.Equal(t, Query{{Name: "x", Value: "1", HasValue: true}}, rc.Query)
	assert.NotEqual(t, rc.RequestID.String(), "", "a request ID is always assigned")
}

func TestNewRequestContextMalformedURIErrors(t *testing.T) {
	_, err := NewRequestContext(RequestHead{Method: "GET", URI: "://missing-scheme", Headers: Headers{}})
	assert.Error(t, err)
}

func TestNewRequestContextUserInfo(t *testing.T) {
	rc, err := NewRequestContext(RequestHead{Method: "GET", URI: "http://alice@example.com/", Headers: Headers{}})
	require.NoError(t, err)
	assert.Equal(t, "alice", rc.UserInfo)
}

func TestNewRequestContextBareHostNoPort(t *testing.T) {
	rc, err := NewRequestContext(RequestHead{Method: "GET", URI: "http://example.com/", Headers: Headers{}})
	require.NoError(t, err)
	assert.Equal(t, "example.com", rc.Host)
	assert.Equal(t, "", rc.Port)
}

func TestNormalizePathStripsEmptyAndDotSegments(t *testing.T) {
	components, err := normalizePath("/a//b/./c/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, components)
}

func TestNormalizePathDotDotPopsPreviousComponent(t *testing.T) {
	components, err := normalizePath("/a/b/../c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, components)
}

func TestNormalizePathDotDotClampsAtRoot(t *testing.T) {
	components, err := normalizePath("/../../a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, components, "\"..\" above the root has no effect rather than escaping it")
}

func TestNormalizePathRoot(t *testing.T) {
	components, err := normalizePath("/")
	require.NoError(t, err)
	assert.Empty(t, components)
}

func TestNormalizePathPercentDecodesBeforeSplitting(t *testing.T) {
	components, err := normalizePath("/a%2Fb/c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, components, "a decoded %2F introduces a genuine path boundary")
}

func TestParseQueryEmptyAndBareFlags(t *testing.T) {
	assert.Nil(t, parseQuery(""))

	q := parseQuery("debug")
	assert.Equal(t, Query{{Name: "debug", HasValue: false}}, q)

	q = parseQuery("a=1&debug&b=2")
	assert.Equal(t, Query{
		{Name: "a", Value: "1", HasValue: true},
		{Name: "debug", HasValue: false},
		{Name: "b", Value: "2", HasValue: true},
	}, q, "item order is preserved")
}

func TestParseQueryUnescapesNameAndValue(t *testing.T) {
	q := parseQuery("na%20me=val%20ue")
	assert.Equal(t, Query{{Name: "na me", Value: "val ue", HasValue: true}}, q)
}

func TestJoinPathAndEncodeQuery(t *testing.T) {
	assert.Equal(t, "a/b%2Fc", joinPath([]string{"a", "b/c"}))
	assert.Equal(t, "a=1&b=2", encodeQuery(Query{
		{Name: "a", Value: "1", HasValue: true},
		{Name: "b", Value: "2", HasValue: true},
	}))
	assert.Equal(t, "debug", encodeQuery(Query{{Name: "debug", HasValue: false}}))
}
