// Package docstore parses and serializes the XML documents the catalog
// exchanges with remote repositories and with its own state file.
package docstore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/glorpus-work/addonctl/pkg/fsutil"
)

// Node is one node of a parsed document.
type Node = xmlquery.Node

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Parse reads an XML document. Comments are kept as comment nodes and are
// skipped by Elements and Root.
func Parse(r io.Reader) (*Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if Root(doc) == nil {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Serialize renders a document built with NewDocument as XML text.
func Serialize(doc *Node) string {
	var b strings.Builder
	b.WriteString(header)
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.DeclarationNode {
			continue
		}
		b.WriteString(n.OutputXML(true))
	}
	b.WriteString("\n")
	return b.String()
}

// LoadFile parses the document stored at path.
func LoadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// SaveFile writes doc to path atomically.
func SaveFile(path string, doc *Node) error {
	return fsutil.WriteFileAtomic(path, []byte(Serialize(doc)), fsutil.FileModeDefault)
}

// NewDocument returns an empty document and its root element.
func NewDocument(rootName string) (doc, root *Node) {
	doc = &xmlquery.Node{Type: xmlquery.DocumentNode}
	root = &xmlquery.Node{Type: xmlquery.ElementNode, Data: rootName}
	xmlquery.AddChild(doc, root)
	return doc, root
}

// AddElement appends a child element with the given attributes, given as
// alternating name/value pairs.
func AddElement(parent *Node, name string, attrs ...string) *Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		xmlquery.AddAttr(n, attrs[i], attrs[i+1])
	}
	xmlquery.AddChild(parent, n)
	return n
}

// AddText appends a child element holding text.
func AddText(parent *Node, name, text string) *Node {
	n := AddElement(parent, name)
	xmlquery.AddChild(n, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
	return n
}

// Root returns the document's first element, or nil.
func Root(doc *Node) *Node {
	if doc == nil {
		return nil
	}
	if doc.Type == xmlquery.ElementNode {
		return doc
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// Elements returns the element children of n in document order.
func Elements(n *Node) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Name returns the local name of an element.
func Name(n *Node) string {
	return n.Data
}

// Text returns the trimmed text content of n.
func Text(n *Node) string {
	return strings.TrimSpace(n.InnerText())
}

// Attr looks up an attribute by local name.
func Attr(n *Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
