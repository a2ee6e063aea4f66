package oasdoc

import "gopkg.in/yaml.v3"

// Contact names who to reach about the API. Every field is optional; the
// zero value serializes as an empty object (plus any extensions).
type Contact struct {
	Name       *string
	URL        *string
	Email      *string
	Extensions Map
}

// NewContact returns an empty Contact.
func NewContact() Contact { return Contact{} }

// WithName returns a copy with the contact name set.
func (c Contact) WithName(name string) Contact {
	c.Name = &name
	return c
}

// WithURL returns a copy with the contact URL set.
func (c Contact) WithURL(url string) Contact {
	c.URL = &url
	return c
}

// WithEmail returns a copy with the contact email set.
func (c Contact) WithEmail(email string) Contact {
	c.Email = &email
	return c
}

// WithExtensions returns a copy with the entries merged into the extensions:
// existing keys keep their position and take the new value, new keys append.
func (c Contact) WithExtensions(pairs ...Extension) Contact {
	ext := c.Extensions.Clone()
	for _, p := range pairs {
		ext.Set(p.Key, p.Value)
	}
	c.Extensions = *ext
	return c
}

// Equal reports structural equality, extensions included.
func (c Contact) Equal(o Contact) bool {
	return equalOptStr(c.Name, o.Name) &&
		equalOptStr(c.URL, o.URL) &&
		equalOptStr(c.Email, o.Email) &&
		c.Extensions.Equal(&o.Extensions)
}

var contactKnown = knownKeys("name", "url", "email")

// MarshalJSON emits the present optional fields in declaration order, then
// extensions in insertion order.
func (c Contact) MarshalJSON() ([]byte, error) {
	w := newWireWriter()
	w.OptStr("name", c.Name)
	w.OptStr("url", c.URL)
	w.OptStr("email", c.Email)
	w.Extensions(c.Extensions, contactKnown)
	return w.Finish()
}

// MarshalYAML emits the same field order as MarshalJSON.
func (c Contact) MarshalYAML() (any, error) { return c.yamlNode() }

func (c Contact) yamlNode() (*yaml.Node, error) {
	w := newNodeWriter()
	w.OptStr("name", c.Name)
	w.OptStr("url", c.URL)
	w.OptStr("email", c.Email)
	w.Extensions(c.Extensions, contactKnown)
	return w.Node()
}

func (c *Contact) decodeFields(d *objDecoder) {
	for d.Next() {
		switch d.Key() {
		case "name":
			d.OptStr(&c.Name)
		case "url":
			d.OptStr(&c.URL)
		case "email":
			d.OptStr(&c.Email)
		default:
			d.Extension(&c.Extensions)
		}
	}
}

// ParseContact decodes one contact object from src.
func ParseContact(src Source, opts ...ParseOpt) (Contact, error) {
	var c Contact
	if err := parseDoc(src, lastOpt(opts), func(d *objDecoder) { c.decodeFields(d) }); err != nil {
		return Contact{}, err
	}
	return c, nil
}

func (c *Contact) UnmarshalJSON(data []byte) error {
	parsed, err := ParseContact(JSONBytes(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *Contact) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseContact(YAMLNode(node))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
