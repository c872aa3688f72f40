package tool

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ellipsis is appended to content cut at the length limit.
const ellipsis = "..."

// strippedTags are removed from the document wholesale before text
// extraction.
var strippedTags = []string{
	"script", "style", "nav", "footer", "header",
	"aside", "noscript", "iframe", "form", "button",
	"meta", "link", "svg", "img", "video", "audio",
}

// nonContentTokens flag boilerplate elements by class or id substring.
var nonContentTokens = []string{
	"nav", "footer", "header", "sidebar", "menu",
	"ad", "advertisement", "cookie", "popup", "modal",
}

var strippedTagSelector = strings.Join(strippedTags, ", ")

// cleanDocument strips non-content markup from doc and returns the
// remaining visible text, whitespace-collapsed and trimmed. This is a
// best-effort boilerplate filter: it removes the listed tag and
// class/id patterns, nothing more.
func cleanDocument(doc *goquery.Document) string {
	doc.Find(strippedTagSelector).Remove()

	doc.Find("[class],[id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if hasNonContentToken(class) || hasNonContentToken(id) {
			s.Remove()
		}
	})

	// Scope extraction to <body> so head-only text (the title) does not
	// leak into the content.
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var sb strings.Builder
	for _, n := range root.Nodes {
		appendText(n, &sb)
	}
	return normalizeText(sb.String())
}

// hasNonContentToken reports whether attr contains any boilerplate
// token as a case-insensitive substring.
func hasNonContentToken(attr string) bool {
	if attr == "" {
		return false
	}
	lower := strings.ToLower(attr)
	for _, token := range nonContentTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// appendText walks n depth-first, writing each text node followed by a
// separator so adjacent elements never run together.
func appendText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, sb)
	}
}

// normalizeText collapses all whitespace runs (spaces, tabs, newlines)
// to single spaces and trims the ends. Idempotent.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateContent limits content to max characters, appending an
// ellipsis marker when cut. Lengths are measured in characters, not
// bytes, so multi-byte text is never split mid-rune.
func truncateContent(content string, max int) (text string, originalLength int, truncated bool) {
	runes := []rune(content)
	originalLength = len(runes)
	if originalLength <= max {
		return content, originalLength, false
	}
	return string(runes[:max]) + ellipsis, originalLength, true
}
