package fetch

import (
	"strings"

	"golang.org/x/net/html"
)

// droppedTags never carry article text worth sending to the model.
var droppedTags = map[string]struct{}{
	"audio":    {},
	"base":     {},
	"button":   {},
	"embed":    {},
	"figure":   {},
	"form":     {},
	"iframe":   {},
	"img":      {},
	"input":    {},
	"link":     {},
	"meta":     {},
	"noscript": {},
	"object":   {},
	"picture":  {},
	"script":   {},
	"style":    {},
	"svg":      {},
	"textarea": {},
	"video":    {},
}

// CleanHTML reduces a feed item description to text-bearing markup: media,
// scripts and forms are removed and only http(s) hrefs survive as attributes.
func CleanHTML(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader("<body>" + raw + "</body>"))
	if err != nil {
		return raw
	}

	body := findBodyNode(doc)
	if body == nil {
		return raw
	}

	var b strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		cleaned := cleanNode(c)
		if cleaned == nil {
			continue
		}
		_ = html.Render(&b, cleaned)
	}
	return strings.TrimSpace(b.String())
}

func findBodyNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, "body") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func cleanNode(n *html.Node) *html.Node {
	switch n.Type {
	case html.TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case html.ElementNode:
		tag := strings.ToLower(strings.TrimSpace(n.Data))
		if _, drop := droppedTags[tag]; drop {
			return nil
		}
		clone := &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: n.DataAtom, Namespace: n.Namespace}
		if tag == "a" {
			for _, a := range n.Attr {
				if strings.EqualFold(a.Key, "href") && isWebURL(a.Val) {
					clone.Attr = append(clone.Attr, html.Attribute{Key: "href", Val: strings.TrimSpace(a.Val)})
				}
			}
		}
		appendCleanChildren(clone, n)
		return clone
	case html.CommentNode, html.DoctypeNode:
		return nil
	default:
		clone := &html.Node{Type: n.Type, Data: n.Data}
		appendCleanChildren(clone, n)
		return clone
	}
}

func appendCleanChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if child := cleanNode(c); child != nil {
			dst.AppendChild(child)
		}
	}
}

func isWebURL(v string) bool {
	u := strings.ToLower(strings.TrimSpace(v))
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
