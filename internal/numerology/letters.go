package numerology

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LetterMode selects which letters of a name contribute to its number.
type LetterMode int

const (
	AllLetters LetterMode = iota
	VowelsOnly
	ConsonantsOnly
)

// pythagorean maps A..Z onto 1..9 in repeating rows of nine.
var pythagorean = [26]int{
	1, 2, 3, 4, 5, 6, 7, 8, 9, // A-I
	1, 2, 3, 4, 5, 6, 7, 8, 9, // J-R
	1, 2, 3, 4, 5, 6, 7, 8, // S-Z
}

// LetterValue returns the Pythagorean value of an upper-case Latin letter, or 0.
func LetterValue(r rune) int {
	if r < 'A' || r > 'Z' {
		return 0
	}
	return pythagorean[r-'A']
}

func isVowel(r rune) bool {
	switch r {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// NormalizeName upper-cases the name, folds accented Latin letters onto their
// base letter and drops everything that is not A-Z or whitespace.
func NormalizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	folded = strings.ToUpper(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// NameNumber returns the unreduced sum of letter values in name for the mode.
func NameNumber(name string, mode LetterMode) int {
	sum := 0
	for _, r := range NormalizeName(name) {
		v := LetterValue(r)
		if v == 0 {
			continue
		}
		switch mode {
		case VowelsOnly:
			if !isVowel(r) {
				continue
			}
		case ConsonantsOnly:
			if isVowel(r) {
				continue
			}
		}
		sum += v
	}
	return sum
}

// HiddenPassion returns the letter value (1..9) occurring most often in name.
// Ties resolve to the smallest value; a name without letters yields 0.
func HiddenPassion(name string) int {
	var counts [10]int
	for _, r := range NormalizeName(name) {
		if v := LetterValue(r); v > 0 {
			counts[v]++
		}
	}
	best, bestCount := 0, 0
	for d := 1; d <= 9; d++ {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}
