package oasdoc

import "gopkg.in/yaml.v3"

// Info carries the document's identifying metadata.
type Info struct {
	Title          string
	Version        string
	Summary        *string
	Description    *string
	TermsOfService *string
	Contact        *Contact
	License        *License
	Extensions     Map
}

// NewInfo returns an Info carrying the required title and version.
func NewInfo(title, version string) Info {
	return Info{Title: title, Version: version}
}

// WithSummary returns a copy with the summary set.
func (i Info) WithSummary(summary string) Info {
	i.Summary = &summary
	return i
}

// WithDescription returns a copy with the description set.
func (i Info) WithDescription(description string) Info {
	i.Description = &description
	return i
}

// WithTermsOfService returns a copy with the terms-of-service URL set.
func (i Info) WithTermsOfService(url string) Info {
	i.TermsOfService = &url
	return i
}

// WithContact returns a copy pointing at the given contact.
func (i Info) WithContact(contact Contact) Info {
	i.Contact = &contact
	return i
}

// WithLicense returns a copy pointing at the given license.
func (i Info) WithLicense(license License) Info {
	i.License = &license
	return i
}

// WithExtensions returns a copy with the entries merged into the extensions:
// existing keys keep their position and take the new value, new keys append.
func (i Info) WithExtensions(pairs ...Extension) Info {
	ext := i.Extensions.Clone()
	for _, p := range pairs {
		ext.Set(p.Key, p.Value)
	}
	i.Extensions = *ext
	return i
}

// Equal reports structural equality, extensions included.
func (i Info) Equal(o Info) bool {
	if i.Title != o.Title || i.Version != o.Version {
		return false
	}
	if !equalOptStr(i.Summary, o.Summary) ||
		!equalOptStr(i.Description, o.Description) ||
		!equalOptStr(i.TermsOfService, o.TermsOfService) {
		return false
	}
	if (i.Contact == nil) != (o.Contact == nil) {
		return false
	}
	if i.Contact != nil && !i.Contact.Equal(*o.Contact) {
		return false
	}
	if (i.License == nil) != (o.License == nil) {
		return false
	}
	if i.License != nil && !i.License.Equal(*o.License) {
		return false
	}
	return i.Extensions.Equal(&o.Extensions)
}

var infoKnown = knownKeys("title", "version", "summary", "description", "termsOfService", "contact", "license")

// MarshalJSON emits title and version first, the present optional fields in
// declaration order, then extensions in insertion order.
func (i Info) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	w.Str("title", i.Title)
	w.Str("version", i.Version)
	w.OptStr("summary", i.Summary)
	w.OptStr("description", i.Description)
	w.OptStr("termsOfService", i.TermsOfService)
	if i.Contact != nil {
		w.Obj("contact", *i.Contact)
	}
	if i.License != nil {
		w.Obj("license", *i.License)
	}
	w.Extensions(i.Extensions, infoKnown)
	return w.Finish()
}

// MarshalYAML emits the same field order as MarshalJSON.
func (i Info) MarshalYAML() (any, error) { return i.yamlNode() }

func (i Info) yamlNode() (*yaml.Node, error) {
	w := newNodeWriter()
	w.Str("title", i.Title)
	w.Str("version", i.Version)
	w.OptStr("summary", i.Summary)
	w.OptStr("description", i.Description)
	w.OptStr("termsOfService", i.TermsOfService)
	if i.Contact != nil {
		w.Obj("contact", *i.Contact)
	}
	if i.License != nil {
		w.Obj("license", *i.License)
	}
	w.Extensions(i.Extensions, infoKnown)
	return w.Node()
}

func (i *Info) decodeFields(d *objDecoder) {
	for d.Next() {
		switch d.Key() {
		case "title":
			d.Str(&i.Title)
		case "version":
			d.Str(&i.Version)
		case "summary":
			d.OptStr(&i.Summary)
		case "description":
			d.OptStr(&i.Description)
		case "termsOfService":
			d.OptStr(&i.TermsOfService)
		case "contact":
			var c Contact
			if d.Obj(c.decodeFields) {
				i.Contact = &c
			} else {
				i.Contact = nil
			}
		case "license":
			var l License
			if d.Obj(l.decodeFields) {
				i.License = &l
			} else {
				i.License = nil
			}
		default:
			d.Extension(&i.Extensions)
		}
	}
	d.Require("title", "version")
}

// ParseInfo decodes one info object from src.
func ParseInfo(src Source, opts ...ParseOpt) (Info, error) {
	var i Info
	if err := parseDoc(src, lastOpt(opts), func(d *objDecoder) { i.decodeFields(d) }); err != nil {
		return Info{}, err
	}
	return i, nil
}

func (i *Info) UnmarshalJSON(data []byte) error {
	parsed, err := ParseInfo(JSONBytes(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i *Info) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseInfo(YAMLNode(node))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
