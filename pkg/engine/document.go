package engine

import (
	"bytes"
	"strings"

	"github.com/ettle/strcase"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Document is the result of Parse.
type Document struct {
	// Path is the input file, empty for stream input.
	Path string

	// Source is the Markdown body the tree refers to (frontmatter removed).
	Source []byte
	Root   ast.Node

	Frontmatter    map[string]any
	HasFrontmatter bool
}

// Node is the serialisable form of a document tree node.
type Node struct {
	Type     string         `json:"type"`
	Value    string         `json:"value,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// Tree converts the parsed document into Nodes.
func (d *Document) Tree() *Node {
	root := convertNode(d.Root, d.Source)
	if d.HasFrontmatter {
		fm := &Node{Type: "frontmatter", Data: d.Frontmatter}
		root.Children = append([]*Node{fm}, root.Children...)
	}
	return root
}

func convertNode(n ast.Node, source []byte) *Node {
	out := &Node{Type: strcase.ToCamel(n.Kind().String())}
	data := map[string]any{}

	switch n := n.(type) {
	case *ast.Text:
		out.Value = string(n.Segment.Value(source))
		if n.SoftLineBreak() {
			data["softLineBreak"] = true
		}
		if n.HardLineBreak() {
			data["hardLineBreak"] = true
		}
	case *ast.String:
		out.Value = string(n.Value)
	case *ast.Heading:
		data["depth"] = n.Level
	case *ast.List:
		data["ordered"] = n.IsOrdered()
		data["tight"] = n.IsTight
		data["marker"] = string(n.Marker)
		if n.IsOrdered() {
			data["start"] = n.Start
		}
	case *ast.Emphasis:
		data["level"] = n.Level
	case *ast.Link:
		data["url"] = string(n.Destination)
		if len(n.Title) > 0 {
			data["title"] = string(n.Title)
		}
	case *ast.Image:
		data["url"] = string(n.Destination)
		if len(n.Title) > 0 {
			data["title"] = string(n.Title)
		}
	case *ast.AutoLink:
		out.Value = string(n.URL(source))
	case *ast.CodeSpan:
		out.Value = inlineText(n, source)
		return finish(out, data)
	case *ast.FencedCodeBlock:
		if lang := n.Language(source); len(lang) > 0 {
			data["lang"] = string(lang)
		}
		out.Value = strings.TrimSuffix(segmentsText(n.Lines(), source), "\n")
	case *ast.CodeBlock:
		out.Value = strings.TrimSuffix(segmentsText(n.Lines(), source), "\n")
	case *ast.HTMLBlock:
		out.Value = strings.TrimSuffix(htmlBlockText(n, source), "\n")
	case *ast.RawHTML:
		out.Value = segmentsText(n.Segments, source)
	case *east.TaskCheckBox:
		data["checked"] = n.IsChecked
	case *east.Table:
		aligns := make([]string, len(n.Alignments))
		for i, a := range n.Alignments {
			aligns[i] = a.String()
		}
		data["align"] = aligns
	case *east.TableCell:
		data["align"] = n.Alignment.String()
	case *east.Footnote:
		data["label"] = string(n.Ref)
		data["index"] = n.Index
	case *east.FootnoteLink:
		data["index"] = n.Index
	case *east.FootnoteBacklink:
		data["index"] = n.Index
	}

	for _, attr := range n.Attributes() {
		attrs, _ := data["attributes"].(map[string]any)
		if attrs == nil {
			attrs = map[string]any{}
			data["attributes"] = attrs
		}
		switch v := attr.Value.(type) {
		case []byte:
			attrs[string(attr.Name)] = string(v)
		default:
			attrs[string(attr.Name)] = v
		}
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out.Children = append(out.Children, convertNode(c, source))
	}
	return finish(out, data)
}

func finish(out *Node, data map[string]any) *Node {
	if len(data) > 0 {
		out.Data = data
	}
	return out
}

func segmentsText(segments *text.Segments, source []byte) string {
	if segments == nil {
		return ""
	}
	var b bytes.Buffer
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

func htmlBlockText(n *ast.HTMLBlock, source []byte) string {
	s := segmentsText(n.Lines(), source)
	if n.HasClosure() {
		s += string(n.ClosureLine.Value(source))
	}
	return s
}

// inlineText concatenates the literal text below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
