package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Node is an element of a metadata document. Queries are matched on the local tag name,
// so namespace prefixes such as edmx: are ignored.
type Node interface {
	// Attribute returns the value of the named attribute.
	Attribute(name string) (string, bool)
	// FindByTag returns all descendants with the given tag in document order.
	FindByTag(tag string) []Node
	// FindByAttributeEquals returns descendants with the given tag whose attribute equals value.
	FindByAttributeEquals(tag, attr, value string) []Node
}

// Document is a parsed metadata document. The document itself is the root of all queries.
type Document interface {
	Node
}

var errNoDocument = errors.New("metadata document is nil")

// ParseError reports metadata that could not be turned into a document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("metadata parsing error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseXML parses metadata text into an etree-backed Document.
func ParseXML(text string) (Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Err: fmt.Errorf("metadata not provided")}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, &ParseError{Err: err}
	}
	if doc.Root() == nil {
		return nil, &ParseError{Err: fmt.Errorf("document has no root element")}
	}

	return &element{el: &doc.Element}, nil
}

type element struct {
	el *etree.Element
}

func (e *element) Attribute(name string) (string, bool) {
	if e == nil || e.el == nil {
		return "", false
	}
	attr := e.el.SelectAttr(name)
	if attr == nil {
		return "", false
	}
	return attr.Value, true
}

func (e *element) FindByTag(tag string) []Node {
	return e.find(func(el *etree.Element) bool {
		return el.Tag == tag
	})
}

func (e *element) FindByAttributeEquals(tag, attr, value string) []Node {
	return e.find(func(el *etree.Element) bool {
		if el.Tag != tag {
			return false
		}
		a := el.SelectAttr(attr)
		return a != nil && a.Value == value
	})
}

func (e *element) find(match func(*etree.Element) bool) []Node {
	if e == nil || e.el == nil {
		return nil
	}
	var nodes []Node
	var walk func(*etree.Element)
	walk = func(parent *etree.Element) {
		for _, child := range parent.ChildElements() {
			if match(child) {
				nodes = append(nodes, &element{el: child})
			}
			walk(child)
		}
	}
	walk(e.el)
	return nodes
}

// attr returns the attribute value or "" when n is nil or the attribute is absent.
func attr(n Node, name string) string {
	if n == nil {
		return ""
	}
	v, _ := n.Attribute(name)
	return v
}

// first returns the first node or nil.
func first(nodes []Node) Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}
