package finalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/summon-almanac/internal/model"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	dashOrWS   = regexp.MustCompile(`[-\s]+`)
	nonASCII   = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })
	slugFolder = transform.Chain(norm.NFKD, runes.Remove(nonASCII))
)

// Slugify folds s to lowercase ASCII words joined by dashes. Accented letters
// lose their marks and other non-ASCII characters are dropped.
func Slugify(s string) string {
	folded, _, err := transform.String(slugFolder, s)
	if err != nil {
		folded = s
	}
	folded = nonWord.ReplaceAllString(strings.ToLower(folded), "")
	folded = dashOrWS.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-_")
}

// slugger hands out slugs that are unique within one namespace.
type slugger struct {
	used map[string]bool
}

func newSlugger() *slugger {
	return &slugger{used: make(map[string]bool)}
}

func (s *slugger) assign(name string, region model.Region) string {
	base := fmt.Sprintf("%s-%s", name, region)
	slug := Slugify(base)
	for i := 1; s.used[slug]; i++ {
		slug = Slugify(fmt.Sprintf("%s-%d", base, i))
	}
	s.used[slug] = true
	return slug
}
