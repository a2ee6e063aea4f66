package oasdoc

import "gopkg.in/yaml.v3"

// License states the license the API is offered under, by SPDX identifier or
// by URL.
type License struct {
	Name       string
	Identifier *string
	URL        *string
	Extensions Map
}

// NewLicense returns a License carrying only the required name.
func NewLicense(name string) License {
	return License{Name: name}
}

// WithIdentifier returns a copy with the SPDX identifier set.
func (l License) WithIdentifier(identifier string) License {
	l.Identifier = &identifier
	return l
}

// WithURL returns a copy with the license URL set.
func (l License) WithURL(url string) License {
	l.URL = &url
	return l
}

// WithExtensions returns a copy with the entries merged into the extensions:
// existing keys keep their position and take the new value, new keys append.
func (l License) WithExtensions(pairs ...Extension) License {
	ext := l.Extensions.Clone()
	for _, p := range pairs {
		ext.Set(p.Key, p.Value)
	}
	l.Extensions = *ext
	return l
}

// Equal reports structural equality, extensions included.
func (l License) Equal(o License) bool {
	return l.Name == o.Name &&
		equalOptStr(l.Identifier, o.Identifier) &&
		equalOptStr(l.URL, o.URL) &&
		l.Extensions.Equal(&o.Extensions)
}

var licenseKnown = knownKeys("name", "identifier", "url")

// MarshalJSON emits name, the present optional fields in declaration order,
// then extensions in insertion order.
func (l License) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	w.Str("name", l.Name)
	w.OptStr("identifier", l.Identifier)
	w.OptStr("url", l.URL)
	w.Extensions(l.Extensions, licenseKnown)
	return w.Finish()
}

// MarshalYAML emits the same field order as MarshalJSON.
func (l License) MarshalYAML() (any, error) { return l.yamlNode() }

func (l License) yamlNode() (*yaml.Node, error) {
	w := newNodeWriter()
	w.Str("name", l.Name)
	w.OptStr("identifier", l.Identifier)
	w.OptStr("url", l.URL)
	w.Extensions(l.Extensions, licenseKnown)
	return w.Node()
}

func (l *License) decodeFields(d *objDecoder) {
	for d.Next() {
		switch d.Key() {
		case "name":
			d.Str(&l.Name)
		case "identifier":
			d.OptStr(&l.Identifier)
		case "url":
			d.OptStr(&l.URL)
		default:
			d.Extension(&l.Extensions)
		}
	}
	d.Require("name")
}

// ParseLicense decodes one license object from src.
func ParseLicense(src Source, opts ...ParseOpt) (License, error) {
	var l License
	if err := parseDoc(src, lastOpt(opts), func(d *objDecoder) { l.decodeFields(d) }); err != nil {
		return License{}, err
	}
	return l, nil
}

func (l *License) UnmarshalJSON(data []byte) error {
	parsed, err := ParseLicense(JSONBytes(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l *License) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseLicense(YAMLNode(node))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
