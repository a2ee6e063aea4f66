package engine

import (
	"io"
	"strconv"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Offset  int64
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink is an optional callback receiving non-fatal issues. If nil,
	// issues are only surfaced when fatal.
	IssueSink func(SimpleIssue)
	// FailFast turns the first issue into an immediate error.
	FailFast bool
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key
// policy, maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &guardedSource{inner: inner, opt: opt}
}

type guardFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

type guardedSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []guardFrame
	depth int
}

func (g *guardedSource) NextToken() (Token, error) {
	tok, err := g.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := g.pathForToken(tok)
	npath := NormalizePointer(path)

	switch tok.Kind {
	case KindBeginObject:
		g.stack = append(g.stack, guardFrame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, path: path})
		if si, fatal := g.enterContainer(npath, tok.Offset); fatal {
			return Token{}, IssueError{si}
		}
	case KindBeginArray:
		g.stack = append(g.stack, guardFrame{kind: kindArray, path: path})
		if si, fatal := g.enterContainer(npath, tok.Offset); fatal {
			return Token{}, IssueError{si}
		}
	case KindEndObject, KindEndArray:
		if n := len(g.stack); n > 0 {
			g.stack = g.stack[:n-1]
		}
		if g.depth > 0 {
			g.depth--
		}
		g.keyConsumed()
	case KindKey:
		if top := g.topFrame(); top != nil && top.kind == kindObject && top.expectingKey {
			if g.opt.OnDuplicate != DupIgnore {
				if _, dup := top.keys[tok.String]; dup {
					si := SimpleIssue{
						Code:    "duplicate_key",
						Path:    npath,
						Message: "key " + strconv.Quote(tok.String) + " duplicated",
						Offset:  tok.Offset,
					}
					if g.opt.IssueSink != nil {
						g.opt.IssueSink(si)
					}
					if g.opt.OnDuplicate == DupError || g.opt.FailFast {
						return Token{}, IssueError{si}
					}
				}
			}
			top.keys[tok.String] = struct{}{}
			top.expectingKey = false
			top.pendingKey = tok.String
		}
	case KindString, KindNumber, KindBool, KindNull:
		g.keyConsumed()
	}

	if g.opt.MaxBytes > 0 {
		if off := g.Location(); off >= 0 && off > g.opt.MaxBytes {
			si := SimpleIssue{Code: "truncated", Path: npath, Message: "max bytes exceeded", Offset: off}
			if g.opt.IssueSink != nil {
				g.opt.IssueSink(si)
			}
			return Token{}, IssueError{si}
		}
	}

	return tok, nil
}

func (g *guardedSource) Location() int64 { return g.inner.Location() }

func (g *guardedSource) enterContainer(npath string, off int64) (SimpleIssue, bool) {
	g.depth++
	if g.opt.MaxDepth > 0 && g.depth > g.opt.MaxDepth {
		si := SimpleIssue{Code: "parse_error", Path: npath, Message: "max depth exceeded", Offset: off}
		if g.opt.IssueSink != nil {
			g.opt.IssueSink(si)
		}
		return si, true
	}
	return SimpleIssue{}, false
}

func (g *guardedSource) topFrame() *guardFrame {
	if n := len(g.stack); n > 0 {
		return &g.stack[n-1]
	}
	return nil
}

func (g *guardedSource) keyConsumed() {
	if top := g.topFrame(); top != nil && top.kind == kindObject && !top.expectingKey {
		top.expectingKey = true
		top.pendingKey = ""
	}
}

// pathForToken derives the JSON Pointer for the token about to be returned.
// Keys point at themselves, values at their key or array index.
func (g *guardedSource) pathForToken(tok Token) string {
	if len(g.stack) == 0 {
		if tok.Kind == KindKey {
			return JoinPointer("", tok.String)
		}
		return ""
	}

	top := &g.stack[len(g.stack)-1]
	switch tok.Kind {
	case KindKey:
		return JoinPointer(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.kind == kindArray {
			p := JoinPointer(top.path, strconv.Itoa(top.nextIndex))
			top.nextIndex++
			return p
		}
		if top.pendingKey != "" || !top.expectingKey {
			return JoinPointer(top.path, top.pendingKey)
		}
		return top.path
	default:
		return top.path
	}
}

// DetectDuplicateKeys drains the token stream, collecting a SimpleIssue per
// duplicated object key. maxIssues < 0 means unlimited, 0 disables collection,
// > 0 caps the list and appends a truncation marker when the cap is hit.
func DetectDuplicateKeys(src TokenSource, maxIssues int) ([]SimpleIssue, error) {
	var issues []SimpleIssue
	full := false
	record := func(si SimpleIssue) {
		if maxIssues == 0 || full {
			return
		}
		if maxIssues > 0 && len(issues) >= maxIssues {
			issues = append(issues, SimpleIssue{Code: "truncated", Path: "/", Message: "max issues reached", Offset: -1})
			full = true
			return
		}
		issues = append(issues, si)
	}
	guarded := WrapWithEnforcement(src, EnforceOptions{OnDuplicate: DupWarn, IssueSink: record})
	for {
		_, err := guarded.NextToken()
		if err == io.EOF {
			return issues, nil
		}
		if err != nil {
			record(SimpleIssue{Code: "parse_error", Path: "/", Message: err.Error(), Offset: -1})
			return issues, nil
		}
	}
}
