// Package doc parses quill's structured markdown documents: a restricted
// metadata header between "---" delimiter lines, followed by a body split
// into second-level-heading sections.
//
// The header format is deliberately NOT YAML. It supports exactly three
// value shapes (scalar string, string list, null) with no nesting,
// no anchors, and no type coercion. Keeping the parser restricted makes
// header handling byte-predictable for regeneration and keeps corpus
// files trivially diffable.
package doc

import (
	"errors"
	"strings"
)

// Delimiter is the header boundary line.
const Delimiter = "---"

var (
	// ErrMissingHeader is returned when a document does not begin with
	// the "---" delimiter line.
	ErrMissingHeader = errors.New("document does not begin with a metadata header")

	// ErrUnterminatedHeader is returned when the opening delimiter is
	// never matched by a closing one.
	ErrUnterminatedHeader = errors.New("metadata header has no closing delimiter")
)

// ValueKind discriminates the three value shapes a header key can carry.
type ValueKind int

const (
	// KindNull marks a key that was present with no value (`key:`).
	KindNull ValueKind = iota
	// KindScalar marks a plain string value (`key: value`).
	KindScalar
	// KindList marks a key whose value is a list of strings.
	KindList
)

// Value is the closed sum of header value shapes. Consumers switch on
// Kind instead of probing; exactly one of Scalar/List is meaningful.
type Value struct {
	Kind   ValueKind
	Scalar string
	List   []string
}

// HeaderMap is an ordered mapping from header key to Value. It is
// created by ParseHeader and must not be modified afterwards.
type HeaderMap struct {
	keys    []string
	entries map[string]Value
}

// Has reports whether the key appeared in the header.
func (m *HeaderMap) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// IsNull reports whether the key is present with a null value.
func (m *HeaderMap) IsNull(key string) bool {
	v, ok := m.entries[key]
	return ok && v.Kind == KindNull
}

// Get returns the scalar value for key, or "" when the key is absent
// or holds a null/list value.
func (m *HeaderMap) Get(key string) string {
	if v, ok := m.entries[key]; ok && v.Kind == KindScalar {
		return v.Scalar
	}
	return ""
}

// List returns the list value for key. Absent keys and scalar/null
// values yield an empty list, never nil errors for callers to handle.
func (m *HeaderMap) List(key string) []string {
	if v, ok := m.entries[key]; ok && v.Kind == KindList {
		out := make([]string, len(v.List))
		copy(out, v.List)
		return out
	}
	return []string{}
}

// Value returns the full sum value for key.
func (m *HeaderMap) Value(key string) (Value, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Keys returns the header keys in the order they first appeared.
func (m *HeaderMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of distinct keys.
func (m *HeaderMap) Len() int {
	return len(m.keys)
}

// Render re-serializes the map in the same line format ParseHeader
// accepts: `key: value` for scalars, a bare `key:` for nulls, and
// `key:` followed by `  - item` lines for lists. Quote characters are
// not re-added; the round trip is value-identical, not byte-identical.
func (m *HeaderMap) Render() string {
	var sb strings.Builder
	for _, key := range m.keys {
		v := m.entries[key]
		switch v.Kind {
		case KindScalar:
			sb.WriteString(key)
			sb.WriteString(": ")
			sb.WriteString(v.Scalar)
			sb.WriteString("\n")
		case KindList:
			sb.WriteString(key)
			sb.WriteString(":\n")
			for _, item := range v.List {
				sb.WriteString("  - ")
				sb.WriteString(item)
				sb.WriteString("\n")
			}
		default:
			sb.WriteString(key)
			sb.WriteString(":\n")
		}
	}
	return sb.String()
}

// set records a value for key, preserving the position of the first
// occurrence when a key repeats (last value wins).
func (m *HeaderMap) set(key string, v Value) {
	if _, exists := m.entries[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// appendItem attaches a list item to key, converting a null value to a
// one-element list on the first item.
func (m *HeaderMap) appendItem(key, item string) {
	v := m.entries[key]
	v.Kind = KindList
	v.List = append(v.List, item)
	m.entries[key] = v
}

// ParseHeader splits text into its header map and body. The text must
// begin with a delimiter line; the body is everything after the closing
// delimiter line, returned byte-for-byte (empty when the delimiter is
// the final line).
//
// Within the header, blank lines and lines whose first non-space byte
// is '#' are skipped. Three line forms are recognized:
//
//	key: value   sets key to the trimmed scalar (no coercion, quotes kept)
//	key:         sets key to null and makes it the current list target
//	- value      appends the trimmed value to the current target's list
//
// Key lines must start at column 0; list items may be indented. Any
// other line is ignored.
func ParseHeader(text string) (*HeaderMap, string, error) {
	first, rest, _ := cutLine(text)
	if strings.TrimRight(first, "\r") != Delimiter {
		return nil, "", ErrMissingHeader
	}

	m := &HeaderMap{entries: make(map[string]Value)}
	current := "" // key eligible to receive list items

	remaining := rest
	for {
		line, next, found := cutLine(remaining)

		noCR := strings.TrimRight(line, "\r")
		if noCR == Delimiter {
			return m, next, nil
		}

		trimmed := strings.TrimSpace(noCR)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			// comment or blank: skipped, current key unaffected

		case strings.HasPrefix(trimmed, "-"):
			if current != "" {
				if item := strings.TrimSpace(trimmed[1:]); item != "" {
					m.appendItem(current, item)
				}
			}

		case !startsWithSpace(noCR):
			if idx := strings.IndexByte(noCR, ':'); idx > 0 {
				key := strings.TrimSpace(noCR[:idx])
				val := strings.TrimSpace(noCR[idx+1:])
				if val == "" {
					m.set(key, Value{Kind: KindNull})
					current = key
				} else {
					m.set(key, Value{Kind: KindScalar, Scalar: val})
					current = ""
				}
			}
		}

		if !found {
			return nil, "", ErrUnterminatedHeader
		}
		remaining = next
	}
}

// HeaderBuilder assembles a HeaderMap programmatically. Auto-fixes use
// it to derive a new header from a parsed one without mutating the
// original, which stays immutable.
type HeaderBuilder struct {
	m *HeaderMap
}

// NewHeaderBuilder creates an empty builder.
func NewHeaderBuilder() *HeaderBuilder {
	return &HeaderBuilder{m: &HeaderMap{entries: make(map[string]Value)}}
}

// Scalar sets key to a scalar string value.
func (b *HeaderBuilder) Scalar(key, val string) *HeaderBuilder {
	b.m.set(key, Value{Kind: KindScalar, Scalar: val})
	return b
}

// Null sets key to the null value.
func (b *HeaderBuilder) Null(key string) *HeaderBuilder {
	b.m.set(key, Value{Kind: KindNull})
	return b
}

// List sets key to a list of items.
func (b *HeaderBuilder) List(key string, items []string) *HeaderBuilder {
	list := make([]string, len(items))
	copy(list, items)
	b.m.set(key, Value{Kind: KindList, List: list})
	return b
}

// Value copies an existing sum value under key.
func (b *HeaderBuilder) Value(key string, v Value) *HeaderBuilder {
	if v.Kind == KindList {
		return b.List(key, v.List)
	}
	b.m.set(key, v)
	return b
}

// Build returns the assembled map. The builder must not be reused.
func (b *HeaderBuilder) Build() *HeaderMap {
	return b.m
}

// cutLine splits off the first line of s, excluding its newline.
// found is false when s holds no newline (line is the final fragment).
func cutLine(s string) (line, rest string, found bool) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func startsWithSpace(s string) bool {
	return len(s) > 0 && (s[0] == ' ' || s[0] == '\t')
}
