package oasdoc

import "gopkg.in/yaml.v3"

// ExternalDocumentation points readers at reference material hosted outside
// the document.
type ExternalDocumentation struct {
	URL         string
	Description *string
	Extensions  Map
}

// NewExternalDocumentation returns an ExternalDocumentation carrying only the
// required url.
func NewExternalDocumentation(url string) ExternalDocumentation {
	return ExternalDocumentation{URL: url}
}

// WithDescription returns a copy with the description set.
func (e ExternalDocumentation) WithDescription(description string) ExternalDocumentation {
	e.Description = &description
	return e
}

// WithExtensions returns a copy with the entries merged into the extensions:
// existing keys keep their position and take the new value, new keys append.
func (e ExternalDocumentation) WithExtensions(pairs ...Extension) ExternalDocumentation {
	ext := e.Extensions.Clone()
	for _, p := range pairs {
		ext.Set(p.Key, p.Value)
	}
	e.Extensions = *ext
	return e
}

// Equal reports structural equality, extensions included.
func (e ExternalDocumentation) Equal(o ExternalDocumentation) bool {
	return e.URL == o.URL &&
		equalOptStr(e.Description, o.Description) &&
		e.Extensions.Equal(&o.Extensions)
}

var externalDocsKnown = knownKeys("url", "description")

// MarshalJSON emits url, description when present, then extensions in
// insertion order.
func (e ExternalDocumentation) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	w.Str("url", e.URL)
	w.OptStr("description", e.Description)
	w.Extensions(e.Extensions, externalDocsKnown)
	return w.Finish()
}

// MarshalYAML emits the same field order as MarshalJSON.
func (e ExternalDocumentation) MarshalYAML() (any, error) { return e.yamlNode() }

func (e ExternalDocumentation) yamlNode() (*yaml.Node, error) {
	w := newNodeWriter()
	w.Str("url", e.URL)
	w.OptStr("description", e.Description)
	w.Extensions(e.Extensions, externalDocsKnown)
	return w.Node()
}

func (e *ExternalDocumentation) decodeFields(d *objDecoder) {
	for d.Next() {
		switch d.Key() {
		case "url":
			d.Str(&e.URL)
		case "description":
			d.OptStr(&e.Description)
		default:
			d.Extension(&e.Extensions)
		}
	}
	d.Require("url")
}

// ParseExternalDocumentation decodes one external documentation object from
// src.
func ParseExternalDocumentation(src Source, opts ...ParseOpt) (ExternalDocumentation, error) {
	var e ExternalDocumentation
	if err := parseDoc(src, lastOpt(opts), func(d *objDecoder) { e.decodeFields(d) }); err != nil {
		return ExternalDocumentation{}, err
	}
	return e, nil
}

func (e *ExternalDocumentation) UnmarshalJSON(data []byte) error {
	parsed, err := ParseExternalDocumentation(JSONBytes(data))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e *ExternalDocumentation) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseExternalDocumentation(YAMLNode(node))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
