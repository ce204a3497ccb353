package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// Words are chosen so they never occur inside ordinary ones ("he" in "The").
func TestFilter_Mask(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"badger", "snake", "mushroom"}, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Simple word", input: "The badger is here", expected: "The ****** is here"},
		{name: "Multiple occurrences", input: "badger badger badger", expected: "****** ****** ******"},
		{name: "Leet speak and inner punctuation", input: "Look at B.4.d.g.€r !", expected: "Look at ********** !"},
		{name: "Uppercase and noise", input: "S-N-A-K-E is a B.A.D.G.E.R", expected: "********* is a ***********"},
		{name: "Multibyte text around", input: "Un été avec un badger", expected: "Un été avec un ******"},
		{name: "Trailing punctuation", input: "mushroom!", expected: "********!"},
		{name: "Nothing to mask", input: "hello there", expected: "hello there"},
		{name: "Empty text", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, filter.Mask(tt.input))
		})
	}
}

func TestFilter_NoWords(t *testing.T) {
	req := require.New(t)

	// Given blank words only
	filter, err := NewFilter([]string{"", " ", "..."}, replacementChar)
	req.NoError(err)

	// Then text passes through untouched
	req.Equal("badger", filter.Mask("badger"))
}

func TestFilter_CustomMask(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"snake"}, '#')
	req.NoError(err)

	req.Equal("a ##### bite", filter.Mask("a snake bite"))
}

func TestFilter_WholeWordsOnly(t *testing.T) {
	filter, err := NewFilter([]string{"ass"}, replacementChar)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Inside a longer word", input: "class sucks", expected: "class sucks"},
		{name: "Across a word gap", input: "it was sad", expected: "it was sad"},
		{name: "Alone", input: "what an ass", expected: "what an ***"},
		{name: "Spread with noise", input: "an a.s.s!", expected: "an *****!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, filter.Mask(tt.input))
		})
	}
}
