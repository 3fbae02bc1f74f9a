package bars

import (
	"fmt"
	"strings"

	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
)

// Scheme is the end-rhyme pattern of a four line verse.
type Scheme string

const (
	AAAA Scheme = "AAAA"
	AABB Scheme = "AABB"
	ABAB Scheme = "ABAB"
	ABBA Scheme = "ABBA"
)

// Schemes lists every supported scheme.
var Schemes = []Scheme{AAAA, AABB, ABAB, ABBA}

// pairSchemes are the schemes built from two rhyming pairs.
var pairSchemes = []Scheme{AABB, ABAB, ABBA}

// ParseScheme accepts a scheme name in any case.
func ParseScheme(s string) (Scheme, error) {
	sc := Scheme(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Schemes {
		if sc == known {
			return sc, nil
		}
	}
	return "", fmt.Errorf("scheme %q: %w", s, internalerr.ErrInvalidInput)
}

// Arrange reorders four lines generated in AABB order into scheme order. ABAB swaps
// the second and third lines, ABBA the second and fourth. Other lengths are returned
// as a plain copy.
func Arrange[T any](lines []T, s Scheme) []T {
	out := append([]T(nil), lines...)
	if len(out) != 4 {
		return out
	}
	switch s {
	case ABAB:
		out[1], out[2] = out[2], out[1]
	case ABBA:
		out[1], out[3] = out[3], out[1]
	}
	return out
}
