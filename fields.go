package oasdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/oasdoc/internal/engine"
	"github.com/reoring/oasdoc/i18n"
)

func knownKeys(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// ---- encode ----

// wireWriter builds a JSON object left to right, so typed fields come out in
// declaration order and extensions in insertion order.
type wireWriter struct {
	buf bytes.Buffer
	err error
	n   int
}

func newWireWriter() *wireWriter {
	w := &wireWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *wireWriter) setErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *wireWriter) key(k string) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.writeString(k)
	w.buf.WriteByte(':')
	w.n++
}

func (w *wireWriter) writeString(s string) {
	b, err := j.Marshal(s)
	if err != nil {
		w.setErr(err)
		w.buf.WriteString(`""`)
		return
	}
	w.buf.Write(b)
}

// Str writes a required string field.
func (w *wireWriter) Str(key, v string) {
	w.key(key)
	w.writeString(v)
}

// OptStr writes an optional string field when present.
func (w *wireWriter) OptStr(key string, v *string) {
	if v == nil {
		return
	}
	w.Str(key, *v)
}

// Obj writes a nested document object through its own MarshalJSON.
func (w *wireWriter) Obj(key string, v json.Marshaler) {
	w.key(key)
	b, err := v.MarshalJSON()
	if err != nil {
		w.setErr(err)
		w.buf.WriteString("null")
		return
	}
	w.buf.Write(b)
}

// Any writes an arbitrary value under key.
func (w *wireWriter) Any(key string, v any) {
	w.key(key)
	w.value(v)
}

// Extensions appends the extension entries, skipping keys claimed by typed
// fields so the wire object never carries a key twice.
func (w *wireWriter) Extensions(m Map, known map[string]struct{}) {
	m.Range(func(k string, v any) bool {
		if _, taken := known[k]; taken {
			return true
		}
		w.Any(k, v)
		return true
	})
}

func (w *wireWriter) value(v any) {
	switch t := v.(type) {
	case nil:
		w.buf.WriteString("null")
	case bool:
		if t {
			w.buf.WriteString("true")
		} else {
			w.buf.WriteString("false")
		}
	case string:
		w.writeString(t)
	case json.Number:
		s := string(t)
		if !j.Valid([]byte(s)) {
			w.setErr(fmt.Errorf("oasdoc: invalid number literal %q", s))
			w.buf.WriteString("null")
			return
		}
		w.buf.WriteString(s)
	case []any:
		w.buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.value(e)
		}
		w.buf.WriteByte(']')
	case []string:
		w.buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.writeString(e)
		}
		w.buf.WriteByte(']')
	case *Map:
		if t == nil {
			w.buf.WriteString("null")
			return
		}
		w.mapValue(*t)
	case Map:
		w.mapValue(t)
	default:
		b, err := j.Marshal(v)
		if err != nil {
			w.setErr(err)
			w.buf.WriteString("null")
			return
		}
		w.buf.Write(b)
	}
}

func (w *wireWriter) mapValue(m Map) {
	w.buf.WriteByte('{')
	first := true
	m.Range(func(k string, v any) bool {
		if !first {
			w.buf.WriteByte(',')
		}
		first = false
		w.writeString(k)
		w.buf.WriteByte(':')
		w.value(v)
		return true
	})
	w.buf.WriteByte('}')
}

// Finish closes the object and returns the bytes, or the first error hit
// while writing values.
func (w *wireWriter) Finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// ---- decode ----

// decodeState accumulates issues for one parse and carries the options.
type decodeState struct {
	opt    ParseOpt
	issues Issues
	halted bool
}

// fail records an Error-level issue. Under FailFast it also halts decoding.
func (st *decodeState) fail(is Issue) {
	st.issues = AppendIssues(st.issues, is)
	if st.opt.FailFast {
		st.halted = true
	}
}

// warn forwards a Warn-level issue to the sink; it never fails the parse.
func (st *decodeState) warn(is Issue) {
	if st.opt.IssueSink != nil {
		st.opt.IssueSink(is)
	}
}

// halt records an issue and marks the stream unusable.
func (st *decodeState) halt(is Issue) {
	st.issues = AppendIssues(st.issues, is)
	st.halted = true
}

// streamFailure converts a token stream error into a halting issue.
func (st *decodeState) streamFailure(path string, err error) {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		st.halt(Issue{Path: eng.NormalizePointer(path), Code: CodeParseError, Message: "unexpected end of input", Cause: err, Offset: -1})
		return
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		st.halt(issueFromEngine(ie.SimpleIssue))
		return
	}
	st.halt(Issue{Path: eng.NormalizePointer(path), Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err, Offset: -1})
}

func (st *decodeState) typeMismatch(path, expected string, got Token) {
	st.fail(Issue{
		Path:    eng.NormalizePointer(path),
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, nil),
		Offset:  got.Offset,
		Params:  map[string]any{"expected": expected, "got": tokenTypeName(got)},
	})
}

func (st *decodeState) requiredMissing(objPath, key string) {
	st.fail(Issue{
		Path:    eng.JoinPointer(objPath, key),
		Code:    CodeRequired,
		Message: i18n.T(CodeRequired, nil),
		Offset:  -1,
		Params:  map[string]any{"key": key},
	})
}

func (st *decodeState) result() error {
	if len(st.issues) > 0 {
		return st.issues
	}
	return nil
}

func tokenTypeName(t Token) string {
	switch t.Kind {
	case TokenBeginObject:
		return "object"
	case TokenBeginArray:
		return "array"
	case TokenString, TokenKey:
		return "string"
	case TokenNumber:
		return "number"
	case TokenBool:
		return "boolean"
	default:
		return "null"
	}
}

// skipValue consumes the remainder of the value that starts at tok.
func skipValue(src Source, tok Token) error {
	depth := 0
	for {
		switch tok.Kind {
		case TokenBeginObject, TokenBeginArray:
			depth++
		case TokenEndObject, TokenEndArray:
			depth--
		}
		if depth <= 0 {
			return nil
		}
		var err error
		tok, err = src.NextToken()
		if err != nil {
			return err
		}
	}
}

// objDecoder walks the keys of one wire object. Each document type routes
// known keys to fields and the rest into its extensions.
type objDecoder struct {
	st   *decodeState
	src  Source
	path string
	seen map[string]struct{}
	key  string
	off  int64
}

func newObjDecoder(st *decodeState, src Source, path string) *objDecoder {
	return &objDecoder{st: st, src: src, path: path, seen: make(map[string]struct{})}
}

// Next advances to the next key. It returns false at the end of the object or
// once decoding has halted.
func (d *objDecoder) Next() bool {
	if d.st.halted {
		return false
	}
	tok, err := d.src.NextToken()
	if err != nil {
		d.st.streamFailure(d.path, err)
		return false
	}
	switch tok.Kind {
	case TokenEndObject:
		return false
	case TokenKey:
		d.key = tok.String
		d.off = tok.Offset
		d.seen[d.key] = struct{}{}
		return true
	default:
		d.st.halt(Issue{Path: eng.NormalizePointer(d.path), Code: CodeParseError, Message: "unexpected token in object", Offset: tok.Offset})
		return false
	}
}

// Key returns the wire key Next stopped on.
func (d *objDecoder) Key() string { return d.key }

func (d *objDecoder) keyPath() string { return eng.JoinPointer(d.path, d.key) }

// Require records a required issue for every listed key that never appeared.
func (d *objDecoder) Require(keys ...string) {
	for _, k := range keys {
		if d.st.halted {
			return
		}
		if _, ok := d.seen[k]; !ok {
			d.st.requiredMissing(d.path, k)
		}
	}
}

func (d *objDecoder) value() (Token, bool) {
	tok, err := d.src.NextToken()
	if err != nil {
		d.st.streamFailure(d.keyPath(), err)
		return Token{}, false
	}
	return tok, true
}

// mismatch records an invalid_type issue and skips the offending value so the
// walk can continue with the next key.
func (d *objDecoder) mismatch(expected string, tok Token) {
	d.st.typeMismatch(d.keyPath(), expected, tok)
	if err := skipValue(d.src, tok); err != nil {
		d.st.streamFailure(d.keyPath(), err)
	}
}

// Str decodes a string value into dst.
func (d *objDecoder) Str(dst *string) {
	tok, ok := d.value()
	if !ok {
		return
	}
	if tok.Kind != TokenString {
		d.mismatch("string", tok)
		return
	}
	*dst = tok.String
}

// OptStr decodes an optional string; an explicit null clears the field.
func (d *objDecoder) OptStr(dst **string) {
	tok, ok := d.value()
	if !ok {
		return
	}
	switch tok.Kind {
	case TokenNull:
		*dst = nil
	case TokenString:
		s := tok.String
		*dst = &s
	default:
		d.mismatch("string", tok)
	}
}

// StrSlice decodes an array of strings; an explicit null clears the field.
func (d *objDecoder) StrSlice(dst *[]string) {
	tok, ok := d.value()
	if !ok {
		return
	}
	switch tok.Kind {
	case TokenNull:
		*dst = nil
		return
	case TokenBeginArray:
	default:
		d.mismatch("array", tok)
		return
	}
	out := []string{}
	for i := 0; ; i++ {
		if d.st.halted {
			return
		}
		t, err := d.src.NextToken()
		if err != nil {
			d.st.streamFailure(d.keyPath(), err)
			return
		}
		if t.Kind == TokenEndArray {
			break
		}
		if t.Kind != TokenString {
			p := eng.JoinPointer(d.keyPath(), strconv.Itoa(i))
			d.st.typeMismatch(p, "string", t)
			if err := skipValue(d.src, t); err != nil {
				d.st.streamFailure(p, err)
				return
			}
			continue
		}
		out = append(out, t.String)
	}
	*dst = out
}

// Obj decodes a nested object by running fields on a child decoder. It
// reports whether a value was decoded; an explicit null yields false with no
// issue so callers can clear the field.
func (d *objDecoder) Obj(fields func(*objDecoder)) bool {
	tok, ok := d.value()
	if !ok {
		return false
	}
	switch tok.Kind {
	case TokenNull:
		return false
	case TokenBeginObject:
		fields(newObjDecoder(d.st, d.src, d.keyPath()))
		return !d.st.halted
	default:
		d.mismatch("object", tok)
		return false
	}
}

// MapObj decodes an object whose entries are themselves objects, invoking
// entry once per name in input order. It reports whether a map was present.
func (d *objDecoder) MapObj(entry func(name string, d *objDecoder)) bool {
	tok, ok := d.value()
	if !ok {
		return false
	}
	switch tok.Kind {
	case TokenNull:
		return false
	case TokenBeginObject:
	default:
		d.mismatch("object", tok)
		return false
	}
	base := d.keyPath()
	for {
		if d.st.halted {
			return false
		}
		ktok, err := d.src.NextToken()
		if err != nil {
			d.st.streamFailure(base, err)
			return false
		}
		if ktok.Kind == TokenEndObject {
			return true
		}
		if ktok.Kind != TokenKey {
			d.st.halt(Issue{Path: eng.NormalizePointer(base), Code: CodeParseError, Message: "unexpected token in object", Offset: ktok.Offset})
			return false
		}
		name := ktok.String
		npath := eng.JoinPointer(base, name)
		vtok, err := d.src.NextToken()
		if err != nil {
			d.st.streamFailure(npath, err)
			return false
		}
		if vtok.Kind != TokenBeginObject {
			d.st.typeMismatch(npath, "object", vtok)
			if err := skipValue(d.src, vtok); err != nil {
				d.st.streamFailure(npath, err)
				return false
			}
			continue
		}
		entry(name, newObjDecoder(d.st, d.src, npath))
	}
}

// Extension routes the current key's value into the extensions bag, decoding
// it to the generic ordered forms.
func (d *objDecoder) Extension(m *Map) {
	key := d.key
	if d.st.opt.Strictness.OnUnknownKey != Ignore && !strings.HasPrefix(key, "x-") {
		is := Issue{
			Path:    d.keyPath(),
			Code:    CodeUnknownKey,
			Message: i18n.T(CodeUnknownKey, nil),
			Offset:  d.off,
			Params:  map[string]any{"key": key},
		}
		if d.st.opt.Strictness.OnUnknownKey == Error {
			d.st.fail(is)
		} else {
			d.st.warn(is)
		}
	}
	if d.st.halted {
		return
	}
	tok, ok := d.value()
	if !ok {
		return
	}
	v, err := decodeValue(d.src, tok)
	if err != nil {
		d.st.streamFailure(d.keyPath(), err)
		return
	}
	m.Set(key, v)
}

// byteLimited is implemented by sources that can cap their input size before
// decoding starts.
type byteLimited interface {
	setByteLimit(n int64)
}

// duplicateRecorder is implemented by sources that resolve duplicate keys
// while normalizing their input and keep the findings for the parser.
type duplicateRecorder interface {
	duplicateKeyIssues() []Issue
}

// parseDoc decodes a single top-level object document from src, runs the
// type-specific field routing, and turns accumulated issues into the error.
func parseDoc(src Source, opt ParseOpt, fields func(*objDecoder)) error {
	if lim, ok := src.(byteLimited); ok && opt.MaxBytes > 0 {
		lim.setByteLimit(opt.MaxBytes)
	}
	st := &decodeState{opt: opt}
	var sink func(Issue)
	if opt.Strictness.OnDuplicateKey == Warn && opt.IssueSink != nil {
		sink = opt.IssueSink
	}
	wrapped := enforceIfNeeded(src, opt, sink)

	tok, err := wrapped.NextToken()
	switch {
	case err == io.EOF:
		st.halt(Issue{Path: "/", Code: CodeParseError, Message: "unexpected end of input", Offset: -1})
	case err != nil:
		st.streamFailure("", err)
	case tok.Kind != TokenBeginObject:
		st.typeMismatch("", "object", tok)
	default:
		fields(newObjDecoder(st, wrapped, ""))
		if !st.halted {
			if tok, err := wrapped.NextToken(); err == nil {
				st.halt(Issue{Path: "/", Code: CodeParseError, Message: "trailing data after document", Offset: tok.Offset})
			} else if err != io.EOF {
				st.streamFailure("", err)
			}
		}
	}

	if rec, ok := src.(duplicateRecorder); ok && opt.Strictness.OnDuplicateKey != Ignore {
		for _, is := range rec.duplicateKeyIssues() {
			if opt.Strictness.OnDuplicateKey == Error {
				st.fail(is)
				if st.halted {
					break
				}
			} else {
				st.warn(is)
			}
		}
	}
	return st.result()
}
