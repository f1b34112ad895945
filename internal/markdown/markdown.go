// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown flattens Markdown source into plain text lines using
// goldmark's AST. Models often emphasise words or emit short lists in slide
// bodies; the rasterizer only draws plain text, so inline markup is dropped
// and block structure becomes line breaks.
package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
	),
)

// Bullet prefixes unordered list items in flattened output.
const Bullet = "• "

// PlainText returns source with all Markdown syntax removed. Paragraphs,
// headings and list items each end up on their own line; raw HTML is
// discarded.
func PlainText(source string) string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				b.WriteString(listMarker(node))
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
				b.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				switch {
				case node.HardLineBreak():
					b.WriteByte('\n')
				case node.SoftLineBreak():
					b.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(node.Label(src))
			}
			return ast.WalkSkipChildren, nil
		default:
			if !entering && endsLine(n) {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return tidy(b.String())
}

// Lines is PlainText split into non-empty lines.
func Lines(source string) []string {
	flat := PlainText(source)
	if flat == "" {
		return nil
	}
	return strings.Split(flat, "\n")
}

// endsLine reports whether n is a block whose children are inline content.
func endsLine(n ast.Node) bool {
	if n.Type() != ast.TypeBlock {
		return false
	}
	first := n.FirstChild()
	return first != nil && first.Type() == ast.TypeInline
}

func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return Bullet
	}
	pos := 0
	for c := list.FirstChild(); c != nil && c != ast.Node(item); c = c.NextSibling() {
		pos++
	}
	return strconv.Itoa(list.Start+pos) + ". "
}

// tidy trims every line and drops blank ones.
func tidy(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
