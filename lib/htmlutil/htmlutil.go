package htmlutil

import (
	"bytes"
	"milex-scraper/lib/textutil"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func cleanRunes(s string) string {
	return strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) {
			return ' '
		}
		if !unicode.IsPrint(c) {
			return -1
		}
		return c
	}, s)
}

// CleanText is the visible text of a node with non-printable characters
// removed and whitespace collapsed, non-breaking spaces included.
func CleanText(node *html.Node) string {
	return textutil.CollapseSpace(cleanRunes(GetText(node)))
}

// SelectionText is CleanText over every node of a selection.
func SelectionText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return textutil.CollapseSpace(cleanRunes(buffer.String()))
}

// nextInDocument returns the node that follows n in document order,
// descending into children first.
func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// FindNext returns the first element with the given tag after n in document
// order, or nil.
func FindNext(n *html.Node, tag atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	for cur := nextInDocument(n); cur != nil; cur = nextInDocument(cur) {
		if cur.Type == html.ElementNode && cur.DataAtom == tag {
			return cur
		}
	}
	return nil
}

// HasClasses reports whether the element carries every one of the classes.
func HasClasses(n *html.Node, classes ...string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		fields := strings.Fields(a.Val)
		for _, want := range classes {
			found := false
			for _, f := range fields {
				if f == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	return len(classes) == 0
}
