package ruleset

import (
	"encoding/xml"
	"strings"
)

// element is a generic XML node. Rule-set processing depends on document
// order across element types, which a typed schema would lose.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []element  `xml:",any"`
}

func parseDocument(data []byte) (*element, error) {
	var root element
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// attr returns the value of the unqualified attribute name.
func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (e *element) name() string {
	return e.XMLName.Local
}

func (e *element) text() string {
	return strings.TrimSpace(e.Text)
}

// child returns the first child with the given local name.
func (e *element) child(name string) *element {
	for i := range e.Children {
		if e.Children[i].name() == name {
			return &e.Children[i]
		}
	}
	return nil
}

// all returns every child with the given local name, in document order.
func (e *element) all(name string) []*element {
	var out []*element
	for i := range e.Children {
		if e.Children[i].name() == name {
			out = append(out, &e.Children[i])
		}
	}
	return out
}
