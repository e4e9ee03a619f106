// Package signpost is a declarative HTTP request dispatcher: responses are
// registered against a combination of method, user-info, host and path
// patterns plus a query shape, and a built Tree resolves an incoming
// request to exactly one of an unambiguous match, a not-found, or an
// ambiguous-request verdict.
//
// A Builder accumulates registrations and builds an immutable Tree safe for
// concurrent dispatch. A Pipeline then runs a matched response's header
// validation, request-body handling and HTTP precondition checks before
// invoking its response function.
package signpost
