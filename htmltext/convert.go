// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package htmltext converts HTML fragments and documents into readable
// markdown-flavored plain text. It is used both for feed items that embed
// their full content as HTML and for pages rendered by the headless
// extraction strategy.
package htmltext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	multiBlank  = regexp.MustCompile(`\n{3,}`)
	multiSpace  = regexp.MustCompile(`[ \t]+`)
	trailingWS  = regexp.MustCompile(`[ \t]+\n`)
	skippedTags = map[string]bool{
		"script": true, "style": true, "noscript": true, "iframe": true,
		"head": true, "nav": true, "footer": true, "form": true,
		"svg": true, "template": true,
	}
)

// ToMarkdown converts an HTML fragment or document into markdown-flavored
// text. Boilerplate elements (scripts, navigation, forms) are dropped.
func ToMarkdown(source string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	body := doc.Find("body")
	if len(body.Nodes) > 0 {
		renderNode(&sb, body.Nodes[0])
	} else {
		for _, node := range doc.Nodes {
			renderNode(&sb, node)
		}
	}

	return tidy(sb.String()), nil
}

func renderNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := strings.ReplaceAll(n.Data, "\n", " ")
		sb.WriteString(text)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if skippedTags[n.Data] {
			return
		}
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		sb.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(sb, n)
		sb.WriteString("\n\n")
	case "p", "div", "section", "article", "table", "tr":
		sb.WriteString("\n\n")
		renderChildren(sb, n)
		sb.WriteString("\n\n")
	case "br":
		sb.WriteString("\n")
	case "hr":
		sb.WriteString("\n\n---\n\n")
	case "strong", "b":
		sb.WriteString("**")
		renderChildren(sb, n)
		sb.WriteString("**")
	case "em", "i":
		sb.WriteString("*")
		renderChildren(sb, n)
		sb.WriteString("*")
	case "blockquote":
		var inner strings.Builder
		renderChildren(&inner, n)
		sb.WriteString("\n\n")
		for _, line := range strings.Split(tidy(inner.String()), "\n") {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
	case "li":
		sb.WriteString("\n- ")
		renderChildren(sb, n)
	case "ul", "ol":
		renderChildren(sb, n)
		sb.WriteString("\n\n")
	case "a":
		var inner strings.Builder
		renderChildren(&inner, n)
		text := strings.TrimSpace(inner.String())
		href := attrValue(n, "href")
		if text == "" {
			return
		}
		if href == "" || strings.HasPrefix(href, "#") {
			sb.WriteString(text)
			return
		}
		sb.WriteString("[" + text + "](" + href + ")")
	case "img":
		alt := strings.TrimSpace(attrValue(n, "alt"))
		if alt != "" {
			sb.WriteString("![" + alt + "]")
		}
	default:
		renderChildren(sb, n)
	}
}

func renderChildren(sb *strings.Builder, n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		renderNode(sb, child)
	}
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// tidy collapses runs of whitespace left behind by nested block elements.
func tidy(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = trailingWS.ReplaceAllString(text, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
