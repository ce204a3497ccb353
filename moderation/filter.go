// Package moderation masks configured words in chat text before broadcast.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Filter masks every occurrence of a censored word, ignoring case, spacing,
// punctuation and common leet-speak substitutions. A match must start and end
// on a word boundary of the original text, so "ass" never masks part of
// "class". A Filter without words returns text unchanged.
type Filter struct {
	matcher *goahocorasick.Machine
	mask    rune
}

// projection is the searchable form of a text: lowered, simplified runes with
// noise removed, each remembering its index in the original text.
type projection struct {
	runes  []rune
	origin []int
}

func NewFilter(words []string, mask rune) (*Filter, error) {
	patterns := lo.FilterMap(lo.Uniq(words), func(word string, _ int) ([]rune, bool) {
		p := project([]rune(word))
		return p.runes, len(p.runes) > 0
	})
	if len(patterns) == 0 {
		return &Filter{mask: mask}, nil
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{matcher: m, mask: mask}, nil
}

// Mask replaces the original runes covered by each match, from the first
// matched rune to the last, so noise inside a word is masked too.
func (f *Filter) Mask(text string) string {
	if f == nil || f.matcher == nil || text == "" {
		return text
	}
	original := []rune(text)
	p := project(original)
	if len(p.runes) == 0 {
		return text
	}
	terms := f.matcher.MultiPatternSearch(p.runes, false)
	if len(terms) == 0 {
		return text
	}
	for _, term := range terms {
		first, last := term.Pos, term.Pos+len(term.Word)-1
		if first < 0 || last >= len(p.origin) || last < first {
			continue
		}
		if !standsAlone(original, p.origin[first], p.origin[last]) {
			continue
		}
		for i := p.origin[first]; i <= p.origin[last]; i++ {
			original[i] = f.mask
		}
	}
	return string(original)
}

// standsAlone reports whether original[first..last] is not glued to a letter
// or digit on either side.
func standsAlone(original []rune, first, last int) bool {
	if first > 0 && isWordRune(original[first-1]) {
		return false
	}
	if last+1 < len(original) && isWordRune(original[last+1]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func project(input []rune) projection {
	p := projection{
		runes:  make([]rune, 0, len(input)),
		origin: make([]int, 0, len(input)),
	}
	for i, r := range input {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		p.runes = append(p.runes, unicode.ToLower(r))
		p.origin = append(p.origin, i)
	}
	return p
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
