package signpost

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// RequestHead is the inbound HTTP contract the dispatcher consumes: the
// parts of a request the embedding HTTP layer has already framed off the
// wire, before any body bytes are read.
type RequestHead struct {
	Method  string
	URI     string
	Headers Headers
}

// RequestContext is the per-request, immutable context built from a
// RequestHead: the enumerated method, the decoded URL, and the normalised
// path-component sequence.
type RequestContext struct {
	Head RequestHead

	RequestID uuid.UUID

	Method   string
	Scheme   string
	Host     string
	Port     string
	UserInfo string

	PathComponents []string
	Query          Query
}

// NewRequestContext derives a RequestContext from head. A malformed URI
// yields an error; that maps unconditionally to 400 Bad Request,
// with no incident callback consulted (there is no RequestContext to hand
// one).
func NewRequestContext(head RequestHead) (*RequestContext, error) {
	u, err := url.Parse(head.URI)
	if err != nil {
		return nil, fmt.Errorf("signpost: malformed URI %q: %w", head.URI, err)
	}

	host, port := splitHostPort(u.Host)

	components, err := normalizePath(u.EscapedPath())
	if err != nil {
		return nil, fmt.Errorf("signpost: malformed path in URI %q: %w", head.URI, err)
	}

	userInfo := ""
	if u.User != nil {
		userInfo = u.User.Username()
	}

	rc := &RequestContext{
		Head:           head,
		RequestID:      uuid.New(),
		Method:         strings.ToUpper(head.Method),
		Scheme:         u.Scheme,
		Host:           strings.ToLower(host),
		Port:           port,
		UserInfo:       userInfo,
		PathComponents: components,
		Query:          parseQuery(u.RawQuery),
	}
	return rc, nil
}

// splitHostPort splits a URL authority into host and port, tolerating a
// bare host with no port.
func splitHostPort(authority string) (host, port string) {
	if authority == "" {
		return "", ""
	}
	h, p, err := net.SplitHostPort(authority)
	if err != nil {
		return authority, ""
	}
	return h, p
}

// normalizePath implements wire-level path normalisation: percent-decoding
// is applied before component splitting; leading/trailing empty components
// are stripped; interior empty components and "." segments are removed;
// ".." pops the previous component, clamped at the root rather than letting
// it escape.
func normalizePath(escapedPath string) ([]string, error) {
	decoded, err := url.PathUnescape(escapedPath)
	if err != nil {
		return nil, err
	}

	raw := strings.Split(decoded, "/")
	components := make([]string, 0, len(raw))
	for _, c := range raw {
		switch c {
		case "", ".":
			continue
		case "..":
			if len(components) > 0 {
				components = components[:len(components)-1]
			}
		default:
			components = append(components, c)
		}
	}
	return components, nil
}

// joinPath re-encodes normalised path components into a wire-format path,
// used when building a redirect Location header.
func joinPath(components []string) string {
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = url.PathEscape(c)
	}
	return strings.Join(parts, "/")
}

// encodeQuery re-encodes a Query into a raw query string, used when building
// a redirect Location header.
func encodeQuery(q Query) string {
	parts := make([]string, 0, len(q))
	for _, item := range q {
		if !item.HasValue {
			parts = append(parts, url.QueryEscape(item.Name))
			continue
		}
		parts = append(parts, url.QueryEscape(item.Name)+"="+url.QueryEscape(item.Value))
	}
	return strings.Join(parts, "&")
}

// parseQuery decodes a raw URL query string into an ordered Query,
// preserving item order and the presence/absence of "=" (HasValue) per
// item. "?" with no items decodes to an empty (nil) Query.
func parseQuery(raw string) Query {
	if raw == "" {
		return nil
	}

	var items Query
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}

		name, value, hasValue := pair, "", false
		if i := strings.IndexByte(pair, '='); i >= 0 {
			name, value, hasValue = pair[:i], pair[i+1:], true
		}

		if n, err := url.QueryUnescape(name); err == nil {
			name = n
		}
		if hasValue {
			if v, err := url.QueryUnescape(value); err == nil {
				value = v
			}
		}

		items = append(items, QueryItem{Name: name, Value: value, HasValue: hasValue})
	}
	return items
}
