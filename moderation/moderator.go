package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"collabhub/errors"
)

// Moderator masks configured blocked words in chat bodies before fan-out.
// Matching is case-insensitive via an Aho-Corasick automaton built once at
// startup; Censor is safe for concurrent use.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the automaton from the blocked-word list.
func NewModerator(blockedWords []string, replacement rune) (Moderator, error) {
	if len(blockedWords) == 0 {
		return Moderator{}, errors.ErrEmptyCensoredWords
	}

	patterns := make([][]rune, len(blockedWords))
	for i, word := range blockedWords {
		patterns[i] = lowerRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every occurrence of a blocked word with the replacement
// rune and reports which words matched. The original string is returned
// untouched when nothing matches.
func (m *Moderator) Censor(original string) (string, []string) {
	runes := []rune(original)
	if len(runes) == 0 {
		return original, nil
	}

	terms := m.matcher.MultiPatternSearch(lowerRunes(runes), false)
	if len(terms) == 0 {
		return original, nil
	}

	found := make([]string, 0, len(terms))
	for _, term := range terms {
		found = append(found, string(term.Word))
		for i := term.Pos; i < term.Pos+len(term.Word) && i < len(runes); i++ {
			if !unicode.IsSpace(runes[i]) {
				runes[i] = m.replacement
			}
		}
	}
	return string(runes), found
}

func lowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
