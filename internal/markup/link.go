package markup

import "strings"

// Link is a [[Title|text]] wikilink.
type Link struct {
	Title string
	Text  string
	Raw   string
	Span
}

func newLink(text string, span Span) Link {
	raw := text[span.Start:span.End]
	parts := splitTopLevel(raw[2:len(raw)-2], '|')
	l := Link{
		Title: strings.TrimSpace(parts[0]),
		Raw:   raw,
		Span:  span,
	}
	if len(parts) > 1 {
		l.Text = strings.Join(parts[1:], "|")
	}
	return l
}

// LinksIn returns the links fully inside [start, end).
func (d *Document) LinksIn(start, end int) []Link {
	var out []Link
	for _, l := range d.Links {
		if l.Start >= start && l.End <= end {
			out = append(out, l)
		}
	}
	return out
}

// TemplatesIn returns the templates fully inside [start, end).
func (d *Document) TemplatesIn(start, end int) []Template {
	var out []Template
	for _, t := range d.Templates {
		if t.Start >= start && t.End <= end {
			out = append(out, t)
		}
	}
	return out
}
