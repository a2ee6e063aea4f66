package oasdoc

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Server describes one host serving the API. Variables name the template
// substitutions available in the URL.
type Server struct {
	URL         string
	Description *string
	Variables   map[string]ServerVariable
	Extensions  Map
}

// NewServer returns a Server carrying only the required url.
func NewServer(url string) Server {
	return Server{URL: url}
}

// WithDescription returns a copy with the description set.
func (s Server) WithDescription(description string) Server {
	s.Description = &description
	return s
}

// WithVariable returns a copy with the named variable set, keeping the
// existing ones.
func (s Server) WithVariable(name string, v ServerVariable) Server {
	vars := make(map[string]ServerVariable, len(s.Variables)+1)
	for k, existing := range s.Variables {
		vars[k] = existing
	}
	vars[name] = v
	s.Variables = vars
	return s
}

// WithExtensions returns a copy with the entries merged into the extensions:
// existing keys keep their position and take the new value, new keys append.
func (s Server) WithExtensions(pairs ...Extension) Server {
	ext := s.Extensions.Clone()
	for _, p := range pairs {
		ext.Set(p.Key, p.Value)
	}
	s.Extensions = *ext
	return s
}

// Equal reports structural equality. Variables compare without regard to map
// iteration order; a nil map equals an empty one.
func (s Server) Equal(o Server) bool {
	if s.URL != o.URL || !equalOptStr(s.Description, o.Description) {
		return false
	}
	if len(s.Variables) != len(o.Variables) {
		return false
	}
	for k, v := range s.Variables {
		ov, ok := o.Variables[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return s.Extensions.Equal(&o.Extensions)
}

var serverKnown = knownKeys("url", "description", "variables")

// MarshalJSON emits url, description when present, variables with
// lexicographically sorted names when non-empty, then extensions in insertion
// order.
func (s Server) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	w.Str("url", s.URL)
	w.OptStr("description", s.Description)
	if len(s.Variables) > 0 {
		w.Any("variables", s.Variables)
	}
	w.Extensions(s.Extensions, serverKnown)
	return w.Finish()
}

// MarshalYAML emits the same field order as MarshalJSON.
func (s Server) MarshalYAML() (any, error) { return s.yamlNode() }

func (s Server) yamlNode() (*yaml.Node, error) {
	w := newNodeWriter()
	w.Str("url", s.URL)
	w.OptStr("description", s.Description)
	if len(s.Variables) > 0 {
		names := make([]string, 0, len(s.Variables))
		for name := range s.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		vars := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, name := range names {
			v := s.Variables[name]
			vn, err := v.yamlNode()
			if err != nil {
				return nil, err
			}
			vars.Content = append(vars.Content, yamlStr(name), vn)
		}
		w.put("variables", vars)
	}
	w.Extensions(s.Extensions, serverKnown)
	return w.Node()
}

func (s *Server) decodeFields(d *objDecoder) {
	for d.Next() {
		switch d.Key() {
		case "url":
			d.Str(&s.URL)
		case "description":
			d.OptStr(&s.Description)
		case "variables":
			vars := map[string]ServerVariable{}
			if d.MapObj(func(name string, cd *objDecoder) {
				var v ServerVariable
				v.decodeFields(cd)
				vars[name] = v
			}) {
				s.Variables = vars
			} else {
				s.Variables = nil
			}
		default:
			d.Extension(&s.Extensions)
		}
	}
	d.Require("url")
}

// ParseServer decodes one server object from src.
func ParseServer(src Source, opts ...ParseOpt) (Server, error) {
	var s Server
	if err := parseDoc(src, lastOpt(opts), func(d *objDecoder) { s.decodeFields(d) }); err != nil {
		return Server{}, err
	}
	return s, nil
}

func (s *Server) UnmarshalJSON(data []byte) error {
	parsed, err := ParseServer(JSONBytes(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Server) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseServer(YAMLNode(node))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ServerVariable describes one URL template substitution: its default, the
// values it may take, and what it means.
type ServerVariable struct {
	Default     string
	Enum        []string
	Description *string
	Extensions  Map
}

// NewServerVariable returns a ServerVariable carrying only the required
// default value.
func NewServerVariable(defaultValue string) ServerVariable {
	return ServerVariable{Default: defaultValue}
}

// WithEnum returns a copy constrained to the given values.
func (v ServerVariable) WithEnum(values ...string) ServerVariable {
	v.Enum = append([]string(nil), values...)
	return v
}

// WithDescription returns a copy with the description set.
func (v ServerVariable) WithDescription(description string) ServerVariable {
	v.Description = &description
	return v
}

// WithExtensions returns a copy with the entries merged into the extensions:
// existing keys keep their position and take the new value, new keys append.
func (v ServerVariable) WithExtensions(pairs ...Extension) ServerVariable {
	ext := v.Extensions.Clone()
	for _, p := range pairs {
		ext.Set(p.Key, p.Value)
	}
	v.Extensions = *ext
	return v
}

// Equal reports structural equality; a nil enum equals an empty one.
func (v ServerVariable) Equal(o ServerVariable) bool {
	return v.Default == o.Default &&
		equalStrSlice(v.Enum, o.Enum) &&
		equalOptStr(v.Description, o.Description) &&
		v.Extensions.Equal(&o.Extensions)
}

var serverVariableKnown = knownKeys("default", "enum", "description")

// MarshalJSON emits default, enum when non-empty, description when present,
// then extensions in insertion order.
func (v ServerVariable) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	w.Str("default", v.Default)
	if len(v.Enum) > 0 {
		w.Any("enum", v.Enum)
	}
	w.OptStr("description", v.Description)
	w.Extensions(v.Extensions, serverVariableKnown)
	return w.Finish()
}

// MarshalYAML emits the same field order as MarshalJSON.
func (v ServerVariable) MarshalYAML() (any, error) { return v.yamlNode() }

func (v ServerVariable) yamlNode() (*yaml.Node, error) {
	w := newNodeWriter()
	w.Str("default", v.Default)
	if len(v.Enum) > 0 {
		w.Any("enum", v.Enum)
	}
	w.OptStr("description", v.Description)
	w.Extensions(v.Extensions, serverVariableKnown)
	return w.Node()
}

func (v *ServerVariable) decodeFields(d *objDecoder) {
	for d.Next() {
		switch d.Key() {
		case "default":
			d.Str(&v.Default)
		case "enum":
			d.StrSlice(&v.Enum)
		case "description":
			d.OptStr(&v.Description)
		default:
			d.Extension(&v.Extensions)
		}
	}
	d.Require("default")
}

// ParseServerVariable decodes one server variable object from src.
func ParseServerVariable(src Source, opts ...ParseOpt) (ServerVariable, error) {
	var v ServerVariable
	if err := parseDoc(src, lastOpt(opts), func(d *objDecoder) { v.decodeFields(d) }); err != nil {
		return ServerVariable{}, err
	}
	return v, nil
}

func (v *ServerVariable) UnmarshalJSON(data []byte) error {
	parsed, err := ParseServerVariable(JSONBytes(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v *ServerVariable) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseServerVariable(YAMLNode(node))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
