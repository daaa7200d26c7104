package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// TableTag is the tag name reported for {| ... |} wiki tables.
const TableTag = "table"

var (
	htmlTagPattern = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9]*)([^<>]*?)(/?)>`)

	voidTags = map[string]bool{
		"br": true, "hr": true, "img": true, "wbr": true, "meta": true, "link": true, "input": true,
	}
)

// Tag is a tagged block: a wiki table or a paired HTML-like tag.
type Tag struct {
	Attrs    map[string]string
	Name     string
	Raw      string
	Contents string
	Span
}

// Attr returns the trimmed attribute value.
func (t Tag) Attr(name string) (string, bool) {
	v, ok := t.Attrs[strings.ToLower(name)]
	return strings.TrimSpace(v), ok
}

// scanTables finds {| ... |} blocks. Both markers must open a line.
func scanTables(text string) []Tag {
	type open struct {
		attrs        string
		start, inner int
	}
	var (
		tags  []Tag
		stack []open
	)
	offset := 0
	for offset <= len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += offset
		}
		line := text[offset:lineEnd]
		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)

		switch {
		case strings.HasPrefix(trimmed, "{|"):
			stack = append(stack, open{start: offset + indent, inner: min(lineEnd+1, len(text)), attrs: trimmed[2:]})
		case strings.HasPrefix(trimmed, "|}") && len(stack) > 0:
			o := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			end := offset + indent + 2
			contents := ""
			if o.inner < offset {
				contents = text[o.inner:offset]
			}
			tags = append(tags, Tag{
				Name:     TableTag,
				Attrs:    parseAttrs(o.attrs),
				Raw:      text[o.start:end],
				Contents: contents,
				Span:     Span{Start: o.start, End: end},
			})
		}
		offset = lineEnd + 1
	}
	return tags
}

func scanHTMLTags(text string) []Tag {
	type open struct {
		name, attrs  string
		start, inner int
	}
	var (
		tags  []Tag
		stack []open
	)
	for _, m := range htmlTagPattern.FindAllStringSubmatchIndex(text, -1) {
		closing := m[3] > m[2]
		name := strings.ToLower(text[m[4]:m[5]])
		attrs := text[m[6]:m[7]]
		selfClosing := m[9] > m[8] || voidTags[name]

		switch {
		case closing:
			for k := len(stack) - 1; k >= 0; k-- {
				if stack[k].name != name {
					continue
				}
				o := stack[k]
				stack = stack[:k]
				tags = append(tags, Tag{
					Name:     name,
					Attrs:    parseAttrs(o.attrs),
					Raw:      text[o.start:m[1]],
					Contents: text[o.inner:m[0]],
					Span:     Span{Start: o.start, End: m[1]},
				})
				break
			}
		case selfClosing:
			tags = append(tags, Tag{
				Name:  name,
				Attrs: parseAttrs(attrs),
				Raw:   text[m[0]:m[1]],
				Span:  Span{Start: m[0], End: m[1]},
			})
		default:
			stack = append(stack, open{name: name, attrs: attrs, start: m[0], inner: m[1]})
		}
	}
	return tags
}

// parseAttrs reads an attribute list by handing it to the HTML tokenizer as a
// synthetic start tag.
func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return attrs
	}
	z := html.NewTokenizer(strings.NewReader("<x " + raw + ">"))
	if tt := z.Next(); tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return attrs
	}
	_, more := z.TagName()
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		if len(key) > 0 {
			attrs[string(key)] = string(val)
		}
	}
	return attrs
}
