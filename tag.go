package oasdoc

import "gopkg.in/yaml.v3"

// Tag is a metadata label operations can reference by name.
type Tag struct {
	Name         string
	Description  *string
	ExternalDocs *ExternalDocumentation
	Extensions   Map
}

// NewTag returns a Tag carrying only the required name. No validation is
// applied; an empty name is accepted and serialized as such.
func NewTag(name string) Tag {
	return Tag{Name: name}
}

// WithDescription returns a copy with the description set.
func (t Tag) WithDescription(description string) Tag {
	t.Description = &description
	return t
}

// WithExternalDocs returns a copy pointing at the given external
// documentation.
func (t Tag) WithExternalDocs(docs ExternalDocumentation) Tag {
	t.ExternalDocs = &docs
	return t
}

// WithExtensions returns a copy with the entries merged into the extensions:
// existing keys keep their position and take the new value, new keys append.
func (t Tag) WithExtensions(pairs ...Extension) Tag {
	ext := t.Extensions.Clone()
	for _, p := range pairs {
		ext.Set(p.Key, p.Value)
	}
	t.Extensions = *ext
	return t
}

// Equal reports structural equality, extensions included.
func (t Tag) Equal(o Tag) bool {
	if t.Name != o.Name || !equalOptStr(t.Description, o.Description) {
		return false
	}
	if (t.ExternalDocs == nil) != (o.ExternalDocs == nil) {
		return false
	}
	if t.ExternalDocs != nil && !t.ExternalDocs.Equal(*o.ExternalDocs) {
		return false
	}
	return t.Extensions.Equal(&o.Extensions)
}

var tagKnown = knownKeys("name", "description", "externalDocs")

// MarshalJSON emits name, then description and externalDocs when present,
// then extensions in insertion order. An extension key that collides with a
// typed key is skipped; the typed field wins.
func (t Tag) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	w.Str("name", t.Name)
	w.OptStr("description", t.Description)
	if t.ExternalDocs != nil {
		w.Obj("externalDocs", *t.ExternalDocs)
	}
	w.Extensions(t.Extensions, tagKnown)
	return w.Finish()
}

// MarshalYAML emits the same field order as MarshalJSON.
func (t Tag) MarshalYAML() (any, error) { return t.yamlNode() }

func (t Tag) yamlNode() (*yaml.Node, error) {
	w := newNodeWriter()
	w.Str("name", t.Name)
	w.OptStr("description", t.Description)
	if t.ExternalDocs != nil {
		w.Obj("externalDocs", *t.ExternalDocs)
	}
	w.Extensions(t.Extensions, tagKnown)
	return w.Node()
}

func (t *Tag) decodeFields(d *objDecoder) {
	for d.Next() {
		switch d.Key() {
		case "name":
			d.Str(&t.Name)
		case "description":
			d.OptStr(&t.Description)
		case "externalDocs":
			var docs ExternalDocumentation
			if d.Obj(docs.decodeFields) {
				t.ExternalDocs = &docs
			} else {
				t.ExternalDocs = nil
			}
		default:
			d.Extension(&t.Extensions)
		}
	}
	d.Require("name")
}

// ParseTag decodes one tag object from src. Known wire keys populate the
// typed fields; every other key lands in Extensions in input order. The
// returned error, when non-nil, is an Issues listing every problem found.
func ParseTag(src Source, opts ...ParseOpt) (Tag, error) {
	var t Tag
	if err := parseDoc(src, lastOpt(opts), func(d *objDecoder) { t.decodeFields(d) }); err != nil {
		return Tag{}, err
	}
	return t, nil
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	parsed, err := ParseTag(JSONBytes(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t *Tag) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseTag(YAMLNode(node))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
