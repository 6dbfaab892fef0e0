// Package view is the presentation layer: component functions map quiz state
// to a small markup tree that renders to HTML. It carries no business logic,
// so rendering is testable without a live page.
package view

import (
	"html"
	"sort"
	"strings"
)

// Node is one element or text run in the markup tree.
type Node interface {
	writeTo(sb *strings.Builder)
}

// Attrs holds an element's attributes. Rendering order is sorted for stable output.
type Attrs map[string]string

// Element is a tag with attributes and children.
type Element struct {
	tag   string
	attrs Attrs
	kids  []Node
}

// El builds an element node. Nil children are skipped, which lets components
// express conditional blocks inline.
func El(tag string, attrs Attrs, kids ...Node) *Element {
	return &Element{tag: tag, attrs: attrs, kids: kids}
}

func (e *Element) writeTo(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.tag)
	if len(e.attrs) > 0 {
		names := make([]string, 0, len(e.attrs))
		for name := range e.attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteByte(' ')
			sb.WriteString(name)
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(e.attrs[name]))
			sb.WriteByte('"')
		}
	}
	sb.WriteByte('>')
	for _, kid := range e.kids {
		if kid != nil {
			kid.writeTo(sb)
		}
	}
	sb.WriteString("</")
	sb.WriteString(e.tag)
	sb.WriteByte('>')
}

type textNode string

func (t textNode) writeTo(sb *strings.Builder) {
	sb.WriteString(html.EscapeString(string(t)))
}

// Text builds an escaped text node. Content that originates from the question
// table should go through Clean first.
func Text(s string) Node {
	return textNode(s)
}

// Render serializes a tree to HTML.
func Render(n Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}
