package common

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// LookaroundTimeout bounds a single backtracking match.
const LookaroundTimeout = 2 * time.Second

// CompileAll compiles a list of RE2 patterns.
func CompileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// CompileLookaround compiles a pattern that may need lookbehind or
// backreferences, which RE2 cannot express.
func CompileLookaround(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = LookaroundTimeout
	return re, nil
}

// ReplaceLookaround replaces every match of re in input. Group references in
// replacement use the ${1} form.
func ReplaceLookaround(re *regexp2.Regexp, input, replacement string) (string, error) {
	out, err := re.Replace(input, replacement, -1, -1)
	if err != nil {
		return input, fmt.Errorf("replace %q: %w", re.String(), err)
	}
	return out, nil
}
