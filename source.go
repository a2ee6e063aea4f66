package oasdoc

import (
	"io"

	eng "github.com/reoring/oasdoc/internal/engine"
)

// TokenKind enumerates wire token kinds.
type TokenKind int

const (
	TokenBeginObject TokenKind = iota
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenKey
	TokenString
	TokenNumber
	TokenBool
	TokenNull
)

// Token describes a token in the input stream. Offset records the byte
// position when known (-1 otherwise).
type Token struct {
	Kind   TokenKind
	String string // Key and string tokens.
	Number string // Numeric literal text, preserved verbatim.
	Bool   bool
	Offset int64
}

// Source abstracts over polymorphic input sources. A Source is single-use:
// once a document has been decoded from it, it is exhausted.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONBytes wraps a byte slice as a JSON Source backed by go-json.
func JSONBytes(b []byte) Source {
	return &engineSourceAdapter{inner: eng.NewBytes(b)}
}

// JSONReader wraps an io.Reader as a JSON Source backed by go-json.
func JSONReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: eng.NewReader(r)}
}

// enforceIfNeeded wraps src with runtime guards (duplicate keys, depth, size)
// unless the options leave every guard disabled. Warn-level findings are
// forwarded to sink as Issue values.
func enforceIfNeeded(src Source, opt ParseOpt, sink func(Issue)) Source {
	if opt.Strictness.OnDuplicateKey == Ignore && opt.MaxDepth == 0 && opt.MaxBytes == 0 {
		return src
	}
	var forward func(eng.SimpleIssue)
	if sink != nil {
		forward = func(si eng.SimpleIssue) {
			sink(issueFromEngine(si))
		}
	}
	// FailFast stays off at the guard level: a Warn-level duplicate is a
	// notification, not an error, and must not abort the stream.
	eo := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   forward,
	}
	// Fast path: unwrap the adapter so the guard sits directly on the engine
	// stream instead of round-tripping through public tokens.
	if ea, ok := src.(*engineSourceAdapter); ok {
		return &engineSourceAdapter{inner: eng.WrapWithEnforcement(ea.inner, eo)}
	}
	return &engineSourceAdapter{inner: eng.WrapWithEnforcement(publicTokenSource{src}, eo)}
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func issueFromEngine(si eng.SimpleIssue) Issue {
	return Issue{Code: si.Code, Path: si.Path, Message: si.Message, Offset: si.Offset}
}

// engineSourceAdapter projects an engine.TokenSource onto the public Source.
type engineSourceAdapter struct {
	inner eng.TokenSource
}

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: fromEngineKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (s *engineSourceAdapter) Location() int64 { return s.inner.Location() }

// publicTokenSource adapts a foreign Source back into an engine.TokenSource
// so guards can wrap it.
type publicTokenSource struct{ src Source }

func (p publicTokenSource) NextToken() (eng.Token, error) {
	t, err := p.src.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{Kind: toEngineKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}

func (p publicTokenSource) Location() int64 { return p.src.Location() }

func fromEngineKind(k eng.Kind) TokenKind {
	switch k {
	case eng.KindBeginObject:
		return TokenBeginObject
	case eng.KindEndObject:
		return TokenEndObject
	case eng.KindBeginArray:
		return TokenBeginArray
	case eng.KindEndArray:
		return TokenEndArray
	case eng.KindKey:
		return TokenKey
	case eng.KindString:
		return TokenString
	case eng.KindNumber:
		return TokenNumber
	case eng.KindBool:
		return TokenBool
	default:
		return TokenNull
	}
}

func toEngineKind(k TokenKind) eng.Kind {
	switch k {
	case TokenBeginObject:
		return eng.KindBeginObject
	case TokenEndObject:
		return eng.KindEndObject
	case TokenBeginArray:
		return eng.KindBeginArray
	case TokenEndArray:
		return eng.KindEndArray
	case TokenKey:
		return eng.KindKey
	case TokenString:
		return eng.KindString
	case TokenNumber:
		return eng.KindNumber
	case TokenBool:
		return eng.KindBool
	default:
		return eng.KindNull
	}
}
