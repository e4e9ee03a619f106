package signpost

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBodyLimit is used for BodyCollectBytes/BodyReduce/BodyJSON plans
// whose Processor.BodyLimit is zero.
const DefaultBodyLimit int64 = 1 << 20 // 1 MiB

// Pipeline runs a matched Processor's request-handling stages: header
// validation, body collection per its BodyPlan, HTTP precondition
// evaluation, and finally the response function.
type Pipeline struct {
	logger *Logger
}

// NewPipeline returns a Pipeline that logs processing failures through
// logger. A nil logger disables logging.
func NewPipeline(logger *Logger) *Pipeline {
	if logger == nil {
		logger = &Logger{}
	}
	return &Pipeline{logger: logger}
}

// Run executes proc against rc, reading the request body (if any) from
// body, and returns the ResponseContent to send. It never returns an error;
// header, body and response-function failures are rendered as incident
// responses via attrs. A failed HTTP precondition short-circuits with a
// plain 304 or 412 response; attrs' OnIncident is not consulted for it.
func (p *Pipeline) Run(proc *Processor, rc *RequestContext, subpath []string, queryValue interface{}, body io.Reader, attrs GroupAttributes) *ResponseContent {
	if proc.ValidateHeaders != nil {
		if err := proc.ValidateHeaders(rc.Head); err != nil {
			return renderIncident(Incident{Kind: IncidentInvalidHeaders, Cause: err}, rc, attrs)
		}
	}

	bodyValue, inc := p.collectBody(proc, body)
	if inc != nil {
		if inc.Kind == IncidentProcessingFailed && attrs.OnError != nil {
			attrs.OnError(inc.Cause, rc)
		}
		return renderIncident(*inc, rc, attrs)
	}

	if resp := p.checkPreconditions(proc, rc); resp != nil {
		return resp
	}

	resp, err := proc.Respond(rc, subpath, queryValue, bodyValue)
	if err != nil {
		if attrs.OnError != nil {
			attrs.OnError(err, rc)
		}
		p.logger.Errorf("signpost: response function failed for request %s: %v", rc.RequestID, err)
		return renderIncident(Incident{Kind: IncidentProcessingFailed, Cause: err}, rc, attrs)
	}
	return resp
}

// collectBody executes proc.Plan against body, returning the value handed to
// Processor.Respond (nil for BodyProhibited), or a non-nil incident on
// failure.
func (p *Pipeline) collectBody(proc *Processor, body io.Reader) (interface{}, *Incident) {
	limit := proc.BodyLimit
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	switch proc.Plan {
	case BodyProhibited:
		if body == nil {
			return nil, nil
		}
		n, err := io.CopyN(io.Discard, body, 1)
		if n > 0 || (err != nil && err != io.EOF) {
			return nil, &Incident{Kind: IncidentMalformedBody, Cause: fmt.Errorf("signpost: body present where none is allowed")}
		}
		return nil, nil

	case BodyCollectBytes:
		data, inc := readLimited(body, limit)
		if inc != nil {
			return nil, inc
		}
		return data, nil

	case BodyReduce:
		if proc.Reduce == nil {
			return nil, &Incident{Kind: IncidentProcessingFailed, Cause: fmt.Errorf("signpost: BodyReduce plan with no Reduce function")}
		}
		return p.reduceLimited(body, limit, proc.Reduce)

	case BodyJSON:
		data, inc := readLimited(body, limit)
		if inc != nil {
			return nil, inc
		}
		var v interface{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, &Incident{Kind: IncidentMalformedBody, Cause: fmt.Errorf("signpost: invalid JSON body: %w", err)}
			}
		}
		return v, nil

	default:
		return nil, &Incident{Kind: IncidentProcessingFailed, Cause: fmt.Errorf("signpost: unknown body plan")}
	}
}

// readLimited reads at most limit+1 bytes from body, reporting
// PayloadTooLarge if more than limit bytes are available.
func readLimited(body io.Reader, limit int64) ([]byte, *Incident) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, &Incident{Kind: IncidentProcessingFailed, Cause: err}
	}
	if int64(len(data)) > limit {
		return nil, &Incident{Kind: IncidentPayloadTooLarge}
	}
	return data, nil
}

// reduceLimited streams body through reduce in fixed-size chunks, enforcing
// limit on the cumulative byte count consumed.
func (p *Pipeline) reduceLimited(body io.Reader, limit int64, reduce ReduceFunc) (interface{}, *Incident) {
	if body == nil {
		return nil, nil
	}

	const chunkSize = 32 * 1024
	chunk := make([]byte, chunkSize)

	var acc interface{}
	var total int64
	for {
		n, err := body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > limit {
				return nil, &Incident{Kind: IncidentPayloadTooLarge}
			}
			next, rerr := reduce(acc, chunk[:n])
			if rerr != nil {
				return nil, &Incident{Kind: IncidentProcessingFailed, Cause: rerr}
			}
			acc = next
		}
		if err == io.EOF {
			return acc, nil
		}
		if err != nil {
			return nil, &Incident{Kind: IncidentProcessingFailed, Cause: err}
		}
	}
}

// checkPreconditions evaluates the standard HTTP conditional-request headers
// against proc's ETag/LastModified, returning a short-circuit response
// (304 or 412) when a precondition fails, or nil to continue.
func (p *Pipeline) checkPreconditions(proc *Processor, rc *RequestContext) *ResponseContent {
	if proc.ETag == "" && proc.LastModified.IsZero() {
		return nil
	}

	headers := rc.Head.Headers

	if v := headers.First("If-Match"); v != "" {
		if !etagMatchesAny(proc.ETag, v) {
			return NewTextResponse(IncidentPreconditionFailed.DefaultStatus(), "Precondition Failed")
		}
	}

	if v := headers.First("If-None-Match"); v != "" {
		if etagMatchesAny(proc.ETag, v) {
			if rc.Method == "GET" || rc.Method == "HEAD" {
				return &ResponseContent{Head: ResponseHead{Status: IncidentNotModified.DefaultStatus(), Headers: Headers{}}}
			}
			return NewTextResponse(IncidentPreconditionFailed.DefaultStatus(), "Precondition Failed")
		}
	}

	if v := headers.First("If-Unmodified-Since"); v != "" && !proc.LastModified.IsZero() {
		if t, err := parseHTTPDate(v); err == nil && proc.LastModified.After(t) {
			return NewTextResponse(IncidentPreconditionFailed.DefaultStatus(), "Precondition Failed")
		}
	}

	if v := headers.First("If-Modified-Since"); v != "" && !proc.LastModified.IsZero() {
		if t, err := parseHTTPDate(v); err == nil && !proc.LastModified.After(t) {
			if rc.Method == "GET" || rc.Method == "HEAD" {
				return &ResponseContent{Head: ResponseHead{Status: IncidentNotModified.DefaultStatus(), Headers: Headers{}}}
			}
		}
	}

	return nil
}

// etagMatchesAny reports whether etag appears in a comma-separated
// If-Match/If-None-Match header value, honoring the "*" wildcard.
func etagMatchesAny(etag, headerValue string) bool {
	if etag == "" {
		return false
	}
	for _, candidate := range strings.Split(headerValue, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag || candidate == "W/"+etag {
			return true
		}
	}
	return false
}

// parseHTTPDate parses an HTTP-date header value, delegating to the
// standard library's RFC 7231 parser.
func parseHTTPDate(v string) (time.Time, error) {
	return http.ParseTime(v)
}
