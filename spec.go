package signpost

import (
	"io"
	"time"
)

// DispatchSpec describes where a response or a set of attributes applies:
// any of these fields may be left empty, meaning wildcard.
type DispatchSpec struct {
	// Methods is the set of HTTP verbs this applies to (canonically
	// upper-cased). Empty means any method.
	Methods []string

	// Users is the set of URL user-info strings this applies to,
	// compared literally and case-sensitively. Empty means any user-info
	// (including absent).
	Users []string

	// Hosts is the set of canonical hosts this applies to, compared
	// case-insensitively with the port stripped. Empty means any host.
	Hosts []string

	// HostAliases, combined with Hosts, populates the build-time
	// redirection map (alias host -> canonical host) when the spec is
	// passed to Builder.Insert. Every alias redirects to the first entry of
	// Hosts; with Hosts empty, HostAliases is ignored.
	// Aliases never receive their own tree entries: a request against an
	// alias host only ever resolves via the main dispatch tree (if some
	// other spec explicitly names the alias as a Host) or via the
	// redirect fallback.
	HostAliases []string

	// Subdomains is a set of optional subdomain prefixes. When non-empty,
	// each host in Hosts is inserted both bare and as "<prefix>.<host>"
	// for every prefix (the subdomain is optional).
	Subdomains []string

	// Path is the literal, already-normalised sequence of path
	// components this applies to. Empty means the root path "/".
	Path []string
}

// BodyPlan selects how the request-processor pipeline handles the request
// body for a matched response.
type BodyPlan uint8

const (
	// BodyProhibited rejects any request carrying a non-empty body.
	BodyProhibited BodyPlan = iota
	// BodyCollectBytes accumulates the body up to a length limit.
	BodyCollectBytes
	// BodyReduce streams the body through a folding function.
	BodyReduce
	// BodyJSON collects the body, then decodes it as JSON.
	BodyJSON
)

// HeaderValidator inspects a request's headers and returns a non-nil error
// to abort with an InvalidHeaders incident.
type HeaderValidator func(RequestHead) error

// ReduceFunc folds one received byte-chunk into an accumulated value.
type ReduceFunc func(acc interface{}, chunk []byte) (interface{}, error)

// ResponseFunc produces the response content for a matched request. subpath
// is populated only for subpath-capable responses (the trailing path
// components beyond the response's registered path); queryValue is whatever
// the winning query parser produced (a SerialParser.ParseResult() map, an
// EntireParser.Value(), or nil for an EmptyParser); body is the outcome of
// the request-body plan (nil for BodyProhibited).
type ResponseFunc func(ctx *RequestContext, subpath []string, queryValue interface{}, body interface{}) (*ResponseContent, error)

// Processor is the opaque handle combining a query parser, a header
// validator, a request-body plan and a response-producing function — the
// response implementation. Its identity is referential: two
// Processors built identically are still distinct for ambiguity purposes.
type Processor struct {
	// QueryParser is one of *EmptyParser, *SerialParser or *EntireParser.
	QueryParser QueryParser

	// ValidateHeaders runs before body handling; nil means "always ok".
	ValidateHeaders HeaderValidator

	// Plan selects the request-body handling strategy.
	Plan BodyPlan

	// BodyLimit is the body-length limit for BodyCollectBytes/BodyReduce/
	// BodyJSON plans. Zero means the package-level DefaultBodyLimit. The
	// limit is per Processor only: groups carry no body limit, so it is not
	// inherited from an enclosing group.
	BodyLimit int64

	// Reduce is required when Plan is BodyReduce.
	Reduce ReduceFunc

	// Respond produces the response. Required.
	Respond ResponseFunc

	// SubpathCapable marks this response as applying to its registered
	// path and to any path extending it.
	SubpathCapable bool

	// ETag and LastModified, if non-zero, are the entity-tag and
	// modification-date the pipeline evaluates HTTP preconditions
	// against.
	ETag         string
	LastModified time.Time
}

// ResponseHead is the outbound response-head contract.
type ResponseHead struct {
	Status  uint16
	Headers Headers
}

// ResponseBody is a closed union of the three body shapes a response can
// produce.
type ResponseBody interface {
	isResponseBody()
}

// BytesBody is a response body held fully in memory.
type BytesBody []byte

func (BytesBody) isResponseBody() {}

// StreamBody is a response body read from an io.Reader.
type StreamBody struct {
	Source io.Reader
}

func (StreamBody) isResponseBody() {}

// CallbackBody is a response body produced by writing directly to an
// io.Writer supplied by the embedding HTTP layer.
type CallbackBody struct {
	Write func(w io.Writer) (int64, error)
}

func (CallbackBody) isResponseBody() {}

// ResponseContent is what a Processor (or an incident callback) produces.
type ResponseContent struct {
	Head ResponseHead
	Body ResponseBody
}

// NewTextResponse is a small convenience constructor for the common case of
// a plain-text body, used throughout the default incident responses.
func NewTextResponse(status uint16, text string) *ResponseContent {
	return &ResponseContent{
		Head: ResponseHead{
			Status:  status,
			Headers: Headers{"content-type": {"text/plain; charset=utf-8"}},
		},
		Body: BytesBody(text),
	}
}
