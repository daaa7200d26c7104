// Package markup tokenizes wikitext into the three node kinds the extractor
// cares about: template invocations, wikilinks and tagged blocks (wiki tables
// and HTML-like tags). Nodes are collected recursively and reported in
// document order.
package markup

import (
	"regexp"
	"sort"
	"strings"
)

var commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)

// Document is the parsed form of one page.
type Document struct {
	Text      string
	Templates []Template
	Links     []Link
	Tags      []Tag
}

// Span is a half-open byte range into the parsed text.
type Span struct {
	Start int
	End   int
}

// StripComments removes HTML comments.
func StripComments(text string) string {
	return commentPattern.ReplaceAllString(text, "")
}

// Parse tokenizes text. It never fails; unbalanced markup is ignored.
func Parse(text string) *Document {
	doc := &Document{Text: text}

	for _, span := range balanced(text, "{{", "}}") {
		doc.Templates = append(doc.Templates, newTemplate(text, span))
	}
	for _, span := range balanced(text, "[[", "]]") {
		doc.Links = append(doc.Links, newLink(text, span))
	}
	doc.Tags = append(doc.Tags, scanTables(text)...)
	doc.Tags = append(doc.Tags, scanHTMLTags(text)...)

	sort.SliceStable(doc.Templates, func(i, j int) bool { return doc.Templates[i].Start < doc.Templates[j].Start })
	sort.SliceStable(doc.Links, func(i, j int) bool { return doc.Links[i].Start < doc.Links[j].Start })
	sort.SliceStable(doc.Tags, func(i, j int) bool { return doc.Tags[i].Start < doc.Tags[j].Start })

	return doc
}

// TemplateNames returns the trimmed names of every template invocation, in order.
func (d *Document) TemplateNames() []string {
	names := make([]string, 0, len(d.Templates))
	for _, t := range d.Templates {
		names = append(names, t.Name)
	}
	return names
}

// balanced finds every well-nested open/close pair, inner pairs included.
func balanced(text, open, closer string) []Span {
	var spans []Span
	var stack []int
	for i := 0; i < len(text)-1; {
		switch {
		case strings.HasPrefix(text[i:], open):
			stack = append(stack, i)
			i += len(open)
		case strings.HasPrefix(text[i:], closer) && len(stack) > 0:
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			i += len(closer)
			spans = append(spans, Span{Start: start, End: i})
		default:
			i++
		}
	}
	return spans
}

// splitTopLevel splits s on sep, ignoring separators nested in templates or links.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{") || strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case (strings.HasPrefix(s[i:], "}}") || strings.HasPrefix(s[i:], "]]")) && depth > 0:
			depth--
			i++
		case s[i] == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}
