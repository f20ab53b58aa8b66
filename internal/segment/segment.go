package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Terminators are the punctuation marks that close a translatable span.
// Commas are included, so clause-level cuts are accepted.
const Terminators = "，。！？.!?;；"

// skippable is what a punctuation-only span may contain.
const skippable = Terminators + ","

var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[0-9]{4}`),                      // year
	regexp.MustCompile(`[0-9]{1,2}/[0-9]{1,2}/[0-9]{4}`), // date
	regexp.MustCompile(`[0-9]{1,2}:[0-9]{2}`),            // time
}

// ExtractCompleteSentence returns the longest prefix of text that ends at a
// terminator or at the end of a recognized numeric pattern (year, date,
// time), and the remainder after it. ok is false when no boundary exists, in
// which case remainder is text unchanged.
//
// Offsets are byte offsets; a cut never lands inside a rune or a digit run.
func ExtractCompleteSentence(text string) (sentence string, ok bool, remainder string) {
	if text == "" {
		return "", false, ""
	}

	cut := lastTerminatorEnd(text)
	if end := lastNumberEnd(text); end > cut {
		cut = end
	}

	if cut <= 0 {
		return "", false, text
	}
	return text[:cut], true, text[cut:]
}

func lastTerminatorEnd(text string) int {
	end := -1
	for _, r := range Terminators {
		if pos := strings.LastIndex(text, string(r)); pos >= 0 {
			if e := pos + utf8.RuneLen(r); e > end {
				end = e
			}
		}
	}
	return end
}

func lastNumberEnd(text string) int {
	end := -1
	for _, re := range numberPatterns {
		matches := re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		if e := matches[len(matches)-1][1]; e > end {
			end = e
		}
	}
	if end < 0 {
		return end
	}
	// "20245" matches [0-9]{4} as "2024"; never leave the trailing digit behind.
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	return end
}

// IsPunctuationOnly reports whether text, once trimmed, is non-empty and made
// only of terminators, commas and whitespace.
func IsPunctuationOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		if !strings.ContainsRune(skippable, r) {
			return false
		}
	}
	return true
}

// IsBlank reports whether text is empty or whitespace only.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// RuneLen is the number of characters in text, used for status messages.
func RuneLen(text string) int {
	return utf8.RuneCountInString(text)
}
