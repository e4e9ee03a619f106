package signpost

import (
	"fmt"
	"io"
)

// Dispatcher is the single entry point an embedding HTTP layer drives: it
// resolves a RequestHead to a Tree verdict and runs the matched response (if
// any) through a Pipeline, producing a ResponseContent in every case —
// success, not-found, ambiguous, redirect, or malformed request.
type Dispatcher struct {
	Tree     *Tree
	Pipeline *Pipeline
}

// NewDispatcher pairs a built Tree with a Pipeline.
func NewDispatcher(tree *Tree, pipeline *Pipeline) *Dispatcher {
	return &Dispatcher{Tree: tree, Pipeline: pipeline}
}

// Handle resolves head to a response. body is the request's byte stream, nil
// for bodyless requests.
func (d *Dispatcher) Handle(head RequestHead, body io.Reader) *ResponseContent {
	rc, err := NewRequestContext(head)
	if err != nil {
		return NewTextResponse(400, "Bad Request")
	}

	verdict := d.Tree.Dispatch(rc)
	switch verdict.Kind {
	case VerdictUnambiguous:
		return d.Pipeline.Run(verdict.Proc, rc, verdict.Subpath, verdict.QueryValue, body, verdict.Attrs)

	case VerdictAmbiguous:
		return renderIncident(Incident{Kind: IncidentAmbiguousRequest}, rc, verdict.Attrs)

	case VerdictRedirect:
		return redirectResponse(rc, verdict.CanonicalHost)

	default:
		return renderIncident(Incident{Kind: IncidentResponseNotFound}, rc, verdict.Attrs)
	}
}

// redirectResponse builds a 302 Found redirect ResponseContent pointing at
// canonicalHost, preserving the request's scheme, path and query.
func redirectResponse(rc *RequestContext, canonicalHost string) *ResponseContent {
	scheme := rc.Scheme
	if scheme == "" {
		scheme = "https"
	}

	location := fmt.Sprintf("%s://%s/%s", scheme, canonicalHost, joinPath(rc.PathComponents))
	if len(rc.Query) > 0 {
		location += "?" + encodeQuery(rc.Query)
	}

	return &ResponseContent{
		Head: ResponseHead{
			Status:  302,
			Headers: Headers{"location": {location}},
		},
		Body: BytesBody(""),
	}
}
