package markup

import (
	"strconv"
	"strings"
)

// Param is one template argument. Positional arguments are named "1", "2", ...
type Param struct {
	Name  string
	Value string
}

// Template is a {{name|arg|key=value}} invocation.
type Template struct {
	Name   string
	Raw    string
	Params []Param
	Span
}

func newTemplate(text string, span Span) Template {
	raw := text[span.Start:span.End]
	parts := splitTopLevel(raw[2:len(raw)-2], '|')

	t := Template{
		Name: strings.TrimSpace(parts[0]),
		Raw:  raw,
		Span: span,
	}
	position := 0
	for _, part := range parts[1:] {
		if eq := indexTopLevel(part, '='); eq >= 0 {
			t.Params = append(t.Params, Param{Name: strings.TrimSpace(part[:eq]), Value: part[eq+1:]})
			continue
		}
		position++
		t.Params = append(t.Params, Param{Name: strconv.Itoa(position), Value: part})
	}
	return t
}

// Get returns the trimmed value of the named argument. The last occurrence wins.
func (t Template) Get(name string) (string, bool) {
	for i := len(t.Params) - 1; i >= 0; i-- {
		if t.Params[i].Name == name {
			return strings.TrimSpace(t.Params[i].Value), true
		}
	}
	return "", false
}

// GetOr returns the named argument, or def when it is missing or blank.
func (t Template) GetOr(name, def string) string {
	if v, ok := t.Get(name); ok && v != "" {
		return v
	}
	return def
}

// Has reports whether the named argument is present.
func (t Template) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{") || strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case (strings.HasPrefix(s[i:], "}}") || strings.HasPrefix(s[i:], "]]")) && depth > 0:
			depth--
			i++
		case s[i] == c && depth == 0:
			return i
		}
	}
	return -1
}
