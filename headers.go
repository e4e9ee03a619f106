package signpost

import "strings"

// Headers is a case-insensitive multi-map of HTTP header names to values.
//
// The key is canonicalized with strings.ToLower before every access, so
// entries written through these methods are stored under lower-cased names.
type Headers map[string][]string

// Get returns the values associated with key.
func (hs Headers) Get(key string) []string {
	return hs[strings.ToLower(key)]
}

// Set replaces the values associated with key.
func (hs Headers) Set(key string, values ...string) {
	hs[strings.ToLower(key)] = values
}

// Delete removes the values associated with key.
func (hs Headers) Delete(key string) {
	delete(hs, strings.ToLower(key))
}

// First returns the first value associated with key, or "" if there is none.
func (hs Headers) First(key string) string {
	if vs := hs.Get(key); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Append appends value to the entries associated with key.
func (hs Headers) Append(key, value string) {
	hs.Set(key, append(hs.Get(key), value)...)
}

// Has reports whether key has at least one associated value.
func (hs Headers) Has(key string) bool {
	return len(hs.Get(key)) > 0
}
