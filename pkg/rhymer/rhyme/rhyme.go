// Package rhyme groups words by their phonetic ending.
package rhyme

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/phonetic"
)

// Index maps a rhyme key to the set of words sharing it.
type Index struct {
	classifier phonetic.Classifier
	groups     map[string]map[string]struct{}
	frozen     bool
}

// New creates an empty rhyme index resolving pronunciations through c.
func New(c phonetic.Classifier) *Index {
	return &Index{
		classifier: c,
		groups:     make(map[string]map[string]struct{}),
	}
}

// Add registers word under the rhyme key of its first transcription. Unknown words
// and single letters other than "a" and "i" are ignored.
func (x *Index) Add(word string) error {
	if x.frozen {
		return internalerr.ErrFrozen
	}
	if !rhymable(word) || x.classifier == nil {
		return nil
	}
	key, ok := phonetic.RhymeKey(phonetic.Primary(x.classifier, word))
	if !ok {
		return nil
	}
	x.insert(key, word)
	return nil
}

// Restore inserts words under key without consulting the classifier.
func (x *Index) Restore(key string, words ...string) error {
	if x.frozen {
		return internalerr.ErrFrozen
	}
	for _, w := range words {
		x.insert(key, w)
	}
	return nil
}

func (x *Index) insert(key, word string) {
	group, ok := x.groups[key]
	if !ok {
		group = make(map[string]struct{})
		x.groups[key] = group
	}
	group[word] = struct{}{}
}

// Freeze makes the index read-only.
func (x *Index) Freeze() {
	x.frozen = true
}

// Frozen reports whether Freeze was called.
func (x *Index) Frozen() bool {
	return x.frozen
}

// PhoneticEnd returns the rhyme key for word if some indexed word already owns it.
// Candidate keys are tried shortest first. word itself need not be indexed.
func (x *Index) PhoneticEnd(word string) (string, error) {
	var phones []string
	if x.classifier != nil {
		phones = phonetic.Primary(x.classifier, word)
	}
	if len(phones) == 0 {
		return "", fmt.Errorf("%q: %w", word, internalerr.ErrNoPronunciation)
	}
	for _, key := range phonetic.CandidateKeys(phones) {
		if len(x.groups[key]) > 0 {
			return key, nil
		}
	}
	return "", fmt.Errorf("%q: %w", word, internalerr.ErrNoRhymeGroup)
}

// RhymingWords returns every word in word's rhyme group, sorted.
func (x *Index) RhymingWords(word string) ([]string, error) {
	key, err := x.PhoneticEnd(word)
	if err != nil {
		return nil, err
	}
	return x.Group(key), nil
}

// RandomRhymingWords picks a random rhyme group holding at least n words and draws
// n distinct words from it. Groups that are too small are discarded without
// replacement until one qualifies.
func (x *Index) RandomRhymingWords(rng *rand.Rand, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("rhyming word count %d: %w", n, internalerr.ErrInvalidInput)
	}

	keys := x.Keys()
	for len(keys) > 0 {
		i := rng.IntN(len(keys))
		key := keys[i]
		if len(x.groups[key]) < n {
			keys[i] = keys[len(keys)-1]
			keys = keys[:len(keys)-1]
			continue
		}
		return Sample(rng, x.Group(key), n), nil
	}
	return nil, fmt.Errorf("need %d words: %w", n, internalerr.ErrInsufficientRhymes)
}

// Sample draws n distinct elements from words without replacement. words is not
// modified. n larger than len(words) returns a shuffled copy.
func Sample(rng *rand.Rand, words []string, n int) []string {
	pool := append([]string(nil), words...)
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for len(out) < n {
		i := rng.IntN(len(pool))
		out = append(out, pool[i])
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return out
}

// Group returns the sorted words stored under key.
func (x *Index) Group(key string) []string {
	group := x.groups[key]
	words := make([]string, 0, len(group))
	for w := range group {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Keys returns all rhyme keys, sorted.
func (x *Index) Keys() []string {
	keys := make([]string, 0, len(x.groups))
	for k := range x.groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Groups returns a copy of every group keyed by rhyme key.
func (x *Index) Groups() map[string][]string {
	out := make(map[string][]string, len(x.groups))
	for k := range x.groups {
		out[k] = x.Group(k)
	}
	return out
}

// Len returns the number of rhyme keys.
func (x *Index) Len() int {
	return len(x.groups)
}

// Has reports whether word is registered under key.
func (x *Index) Has(key, word string) bool {
	_, ok := x.groups[key][word]
	return ok
}

func rhymable(word string) bool {
	switch len(word) {
	case 0:
		return false
	case 1:
		return word == "a" || word == "i"
	default:
		return true
	}
}
