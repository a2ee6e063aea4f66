// Package engine provides the streaming token layer shared by every input
// format: token kinds, the TokenSource contract, JSON Pointer path helpers,
// and the runtime guards (duplicate keys, depth, size) applied on top of a
// token stream.
package engine

import "strings"

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string // Key and string tokens.
	Number string // Numeric literal text, preserved verbatim.
	Bool   bool
	Offset int64 // Byte offset when known, -1 otherwise.
}

// TokenSource is the minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapePointerToken escapes a single reference token per RFC 6901.
func EscapePointerToken(s string) string {
	return pointerEscaper.Replace(s)
}

// JoinPointer appends a reference token to a JSON Pointer base.
func JoinPointer(base, token string) string {
	if base == "" {
		return "/" + EscapePointerToken(token)
	}
	return base + "/" + EscapePointerToken(token)
}

// NormalizePointer maps the empty (root) path to "/" for display in issues.
func NormalizePointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
