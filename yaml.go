package oasdoc

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/oasdoc/internal/engine"
)

// YAMLBytes wraps a YAML byte slice as a Source. The document is normalized
// into an ordered token stream; repeated mapping keys resolve to the last
// value at the first position and are recorded for the parser to judge.
func YAMLBytes(b []byte) Source { return &yamlSource{data: b} }

// YAMLReader wraps an io.Reader carrying YAML as a Source. The reader is
// consumed fully on first use. Only the first document of a multi-document
// stream is read.
func YAMLReader(r io.Reader) Source { return &yamlSource{r: r} }

// YAMLNode wraps an already-decoded yaml.Node as a Source. This is the hook
// UnmarshalYAML implementations use.
func YAMLNode(n *yaml.Node) Source { return &yamlSource{node: n} }

type yamlSource struct {
	data  []byte
	r     io.Reader
	node  *yaml.Node
	limit int64

	ready bool
	toks  []Token
	dups  []Issue
	err   error
	pos   int
}

func (s *yamlSource) setByteLimit(n int64) { s.limit = n }

func (s *yamlSource) duplicateKeyIssues() []Issue {
	s.ensure()
	return s.dups
}

func (s *yamlSource) NextToken() (Token, error) {
	s.ensure()
	if s.pos < len(s.toks) {
		t := s.toks[s.pos]
		s.pos++
		return t, nil
	}
	if s.err != nil {
		return Token{}, s.err
	}
	return Token{}, io.EOF
}

func (s *yamlSource) Location() int64 { return -1 }

func (s *yamlSource) ensure() {
	if s.ready {
		return
	}
	s.ready = true
	root := s.node
	if root == nil {
		data := s.data
		if s.r != nil {
			rd := io.Reader(s.r)
			if s.limit > 0 {
				rd = io.LimitReader(rd, s.limit+1)
			}
			var err error
			data, err = io.ReadAll(rd)
			if err != nil {
				s.err = err
				return
			}
		}
		if s.limit > 0 && int64(len(data)) > s.limit {
			s.err = eng.IssueError{SimpleIssue: eng.SimpleIssue{Code: CodeTruncated, Path: "/", Message: "max bytes exceeded", Offset: s.limit}}
			return
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			s.err = err
			return
		}
		root = &doc
	}
	w := &yamlWalker{}
	w.walk(root, "")
	s.toks, s.dups, s.err = w.toks, w.dups, w.err
}

// yamlWalker flattens a yaml.Node tree into wire tokens, deduplicating
// mapping keys with last-value-first-position semantics.
type yamlWalker struct {
	toks     []Token
	dups     []Issue
	err      error
	inFlight map[*yaml.Node]bool
}

func (w *yamlWalker) emit(t Token) {
	t.Offset = -1
	w.toks = append(w.toks, t)
}

func (w *yamlWalker) walk(n *yaml.Node, path string) {
	if w.err != nil || n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			w.walk(n.Content[0], path)
		}
	case yaml.AliasNode:
		if n.Alias == nil {
			w.emit(Token{Kind: TokenNull})
			return
		}
		if w.inFlight[n.Alias] {
			w.err = fmt.Errorf("yaml: recursive alias %q at line %d", n.Value, n.Line)
			return
		}
		w.walk(n.Alias, path)
	case yaml.MappingNode:
		w.enter(n)
		w.mapping(n, path)
		w.leave(n)
	case yaml.SequenceNode:
		w.enter(n)
		w.emit(Token{Kind: TokenBeginArray})
		for i, c := range n.Content {
			w.walk(c, eng.JoinPointer(path, strconv.Itoa(i)))
		}
		w.emit(Token{Kind: TokenEndArray})
		w.leave(n)
	case yaml.ScalarNode:
		w.scalar(n)
	}
}

func (w *yamlWalker) enter(n *yaml.Node) {
	if w.inFlight == nil {
		w.inFlight = make(map[*yaml.Node]bool)
	}
	w.inFlight[n] = true
}

func (w *yamlWalker) leave(n *yaml.Node) { delete(w.inFlight, n) }

func (w *yamlWalker) mapping(n *yaml.Node, path string) {
	type pair struct {
		key string
		at  *yaml.Node // occurrence node, for positions
		val *yaml.Node
	}
	var order []pair
	first := make(map[string]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		kk := k
		if kk.Kind == yaml.AliasNode && kk.Alias != nil {
			kk = kk.Alias
		}
		if kk.Kind != yaml.ScalarNode {
			w.err = fmt.Errorf("yaml: non-scalar mapping key at line %d", k.Line)
			return
		}
		key := kk.Value
		if at, dup := first[key]; dup {
			fk := order[at].at
			w.dups = append(w.dups, Issue{
				Path:    eng.NormalizePointer(eng.JoinPointer(path, key)),
				Code:    CodeDuplicateKey,
				Message: fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", key, k.Line, k.Column, fk.Line, fk.Column),
				Offset:  -1,
				Params: map[string]any{
					"line": k.Line, "column": k.Column,
					"firstLine": fk.Line, "firstColumn": fk.Column,
				},
			})
			order[at].val = v
			continue
		}
		first[key] = len(order)
		order = append(order, pair{key: key, at: k, val: v})
	}
	w.emit(Token{Kind: TokenBeginObject})
	for _, p := range order {
		w.emit(Token{Kind: TokenKey, String: p.key})
		w.walk(p.val, eng.JoinPointer(path, p.key))
	}
	w.emit(Token{Kind: TokenEndObject})
}

// scalar converts one YAML scalar to a wire token. Literals the tag cannot
// back (overflowing ints, non-finite floats, unparsable bools) degrade to
// strings rather than failing the whole document.
func (w *yamlWalker) scalar(n *yaml.Node) {
	switch n.Tag {
	case "!!null":
		w.emit(Token{Kind: TokenNull})
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			w.emit(Token{Kind: TokenBool, Bool: b})
			return
		}
		w.emit(Token{Kind: TokenString, String: n.Value})
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			w.emit(Token{Kind: TokenNumber, Number: strconv.FormatInt(i, 10)})
			return
		}
		if u, err := strconv.ParseUint(n.Value, 10, 64); err == nil {
			w.emit(Token{Kind: TokenNumber, Number: strconv.FormatUint(u, 10)})
			return
		}
		w.emit(Token{Kind: TokenString, String: n.Value})
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			w.emit(Token{Kind: TokenNumber, Number: strconv.FormatFloat(f, 'g', -1, 64)})
			return
		}
		w.emit(Token{Kind: TokenString, String: n.Value})
	default:
		// !!str, timestamps, binary and custom tags all pass through as text.
		w.emit(Token{Kind: TokenString, String: n.Value})
	}
}

// ---- encode ----

// nodeWriter builds an ordered yaml.Node mapping, mirroring wireWriter for
// the YAML direction.
type nodeWriter struct {
	node *yaml.Node
	err  error
}

func newNodeWriter() *nodeWriter {
	return &nodeWriter{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (w *nodeWriter) setErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *nodeWriter) put(key string, v *yaml.Node) {
	w.node.Content = append(w.node.Content, yamlStr(key), v)
}

func (w *nodeWriter) Str(key, v string) { w.put(key, yamlStr(v)) }

func (w *nodeWriter) OptStr(key string, v *string) {
	if v != nil {
		w.Str(key, *v)
	}
}

// yamlNoder is satisfied by every document object in this package.
type yamlNoder interface {
	yamlNode() (*yaml.Node, error)
}

func (w *nodeWriter) Obj(key string, v yamlNoder) {
	n, err := v.yamlNode()
	if err != nil {
		w.setErr(err)
		return
	}
	w.put(key, n)
}

func (w *nodeWriter) Any(key string, v any) {
	n, err := yamlValueNode(v)
	if err != nil {
		w.setErr(err)
		return
	}
	w.put(key, n)
}

func (w *nodeWriter) Extensions(m Map, known map[string]struct{}) {
	m.Range(func(k string, v any) bool {
		if _, taken := known[k]; taken {
			return true
		}
		w.Any(k, v)
		return true
	})
}

func (w *nodeWriter) Node() (*yaml.Node, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.node, nil
}

func yamlStr(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// yamlValueNode converts a generic wire value into a yaml.Node.
func yamlValueNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case string:
		return yamlStr(t), nil
	case json.Number:
		s := string(t)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
		}
		if _, err := strconv.ParseUint(s, 10, 64); err == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
		}
		return nil, fmt.Errorf("oasdoc: invalid number literal %q", s)
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			n, err := yamlValueNode(e)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			seq.Content = append(seq.Content, yamlStr(e))
		}
		return seq, nil
	case *Map:
		if t == nil {
			return yamlValueNode(nil)
		}
		return t.yamlNode()
	case Map:
		return t.yamlNode()
	case yamlNoder:
		return t.yamlNode()
	default:
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return &n, nil
	}
}

func (m Map) yamlNode() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	m.Range(func(k string, v any) bool {
		var n *yaml.Node
		n, err = yamlValueNode(v)
		if err != nil {
			return false
		}
		node.Content = append(node.Content, yamlStr(k), n)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// MarshalYAML emits the entries as an ordered mapping node.
func (m Map) MarshalYAML() (any, error) { return m.yamlNode() }

// UnmarshalYAML replaces the Map with the decoded mapping, resolving repeated
// keys to the last value at the first position.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	src := YAMLNode(node)
	tok, err := src.NextToken()
	if err != nil {
		return Issues{{Path: "/", Code: CodeParseError, Message: "malformed input", Cause: err, Offset: -1}}
	}
	if tok.Kind != TokenBeginObject {
		return Issues{{Path: "/", Code: CodeInvalidType, Message: "mapping expected", Offset: -1,
			Params: map[string]any{"expected": "object", "got": tokenTypeName(tok)}}}
	}
	v, err := decodeValue(src, tok)
	if err != nil {
		return Issues{{Path: "/", Code: CodeParseError, Message: "malformed input", Cause: err, Offset: -1}}
	}
	*m = *v.(*Map)
	return nil
}
