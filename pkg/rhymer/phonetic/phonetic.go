// Package phonetic resolves words to ARPAbet transcriptions and derives rhyme keys
// from them.
package phonetic

import (
	"strings"
	"unicode"
)

// Classifier returns the known pronunciations of a word. Each pronunciation is an
// ordered list of ARPAbet phoneme tokens; stressed vowels carry a stress digit.
// Unknown words yield an empty result.
type Classifier interface {
	PhonemesFor(word string) [][]string
}

// IsStressed reports whether a phoneme token carries a stress digit.
func IsStressed(phoneme string) bool {
	return strings.IndexFunc(phoneme, unicode.IsDigit) >= 0
}

// RhymeKey builds the rime of a transcription: tokens concatenated from the end
// backward up to and including the last stressed vowel. ok is false when the
// transcription has no stressed token.
func RhymeKey(phones []string) (key string, ok bool) {
	keys := CandidateKeys(phones)
	if len(keys) == 0 {
		return "", false
	}
	return keys[0], true
}

// CandidateKeys returns one key per stressed token, walking from the end of the
// transcription, so the shortest rime comes first.
//
//	K AE1 T          -> [TAE1]
//	R AH0 K AO1 R D  -> [DRAO1 DRAO1KAH0]
//	P AE1 S AH0 JH   -> [JHAH0 JHAH0SAE1]
func CandidateKeys(phones []string) []string {
	var keys []string
	var stub strings.Builder
	for i := len(phones) - 1; i >= 0; i-- {
		stub.WriteString(phones[i])
		if IsStressed(phones[i]) {
			keys = append(keys, stub.String())
		}
	}
	return keys
}

// Primary returns the first listed transcription for word, or nil.
func Primary(c Classifier, word string) []string {
	all := c.PhonemesFor(word)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}
