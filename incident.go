package signpost

// IncidentKind names one of the failure conditions the dispatcher and its
// request-processor pipeline can surface. The taxonomy is total: every
// failure mode maps to exactly one incident.
type IncidentKind uint8

const (
	IncidentResponseNotFound IncidentKind = iota
	IncidentAmbiguousRequest
	IncidentInvalidHeaders
	IncidentMalformedBody
	IncidentProcessingFailed
	IncidentPayloadTooLarge
	IncidentPreconditionFailed
	IncidentNotModified
)

// String returns a human-readable incident name, used in logging.
func (k IncidentKind) String() string {
	switch k {
	case IncidentResponseNotFound:
		return "ResponseNotFound"
	case IncidentAmbiguousRequest:
		return "AmbiguousRequest"
	case IncidentInvalidHeaders:
		return "InvalidHeaders"
	case IncidentMalformedBody:
		return "MalformedBody"
	case IncidentProcessingFailed:
		return "ProcessingFailed"
	case IncidentPayloadTooLarge:
		return "PayloadTooLarge"
	case IncidentPreconditionFailed:
		return "PreconditionFailed"
	case IncidentNotModified:
		return "NotModified"
	default:
		return "UnknownIncident"
	}
}

// DefaultStatus returns the default HTTP status for the incident kind, per
// the table below.
func (k IncidentKind) DefaultStatus() uint16 {
	switch k {
	case IncidentResponseNotFound:
		return 404
	case IncidentAmbiguousRequest:
		return 400
	case IncidentInvalidHeaders:
		return 400
	case IncidentMalformedBody:
		return 400
	case IncidentProcessingFailed:
		return 500
	case IncidentPayloadTooLarge:
		return 413
	case IncidentPreconditionFailed:
		return 412
	case IncidentNotModified:
		return 304
	default:
		return 500
	}
}

// Incident is a concrete occurrence of an IncidentKind, carrying the
// underlying cause when one exists (InvalidHeaders, ProcessingFailed).
type Incident struct {
	Kind  IncidentKind
	Cause error
}

// IncidentCallback maps an incident to an optional custom response. It is
// consulted before the default status response is emitted.
type IncidentCallback func(Incident, *RequestContext) *ResponseContent

// renderIncident resolves an Incident to a *ResponseContent: the attrs'
// OnIncident callback is consulted first; if it returns nil, or there is no
// callback, the default-status response is emitted.
func renderIncident(inc Incident, rc *RequestContext, attrs GroupAttributes) *ResponseContent {
	if attrs.OnIncident != nil {
		if custom := attrs.OnIncident(inc, rc); custom != nil {
			return custom
		}
	}
	return NewTextResponse(inc.Kind.DefaultStatus(), inc.Kind.String())
}
