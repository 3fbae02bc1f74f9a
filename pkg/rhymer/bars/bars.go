// Package bars grows rhyming lines backward from their end words and assembles
// them into four line verses.
package bars

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/rhymer/pkg/rhymer/censor"
	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/markov"
	"github.com/cognicore/rhymer/pkg/rhymer/rhyme"
)

// Line length bounds, in words.
const (
	LineMin = 6
	LineMax = 8

	// DefaultMaxTokens caps a single walk when the chain never offers a line start.
	DefaultMaxTokens = 24
)

// Bar is one generated line.
type Bar struct {
	Text      string `json:"text" yaml:"text"`
	EndWord   string `json:"end_word" yaml:"end_word"`
	Words     int    `json:"words" yaml:"words"`
	Truncated bool   `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// Verse is four bars in scheme order.
type Verse struct {
	ID     string `json:"id" yaml:"id"`
	Scheme Scheme `json:"scheme" yaml:"scheme"`
	Bars   []Bar  `json:"bars" yaml:"bars"`
}

// Lines returns the text of every bar.
func (v Verse) Lines() []string {
	lines := make([]string, len(v.Bars))
	for i, b := range v.Bars {
		lines[i] = b.Text
	}
	return lines
}

// Truncated reports whether any bar hit the token cap.
func (v Verse) Truncated() bool {
	for _, b := range v.Bars {
		if b.Truncated {
			return true
		}
	}
	return false
}

// Options configures a Generator. Zero values take the package defaults.
type Options struct {
	LineMin   int
	LineMax   int
	MaxTokens int
	Rand      *mrand.Rand
	Logger    *slog.Logger
}

// Generator draws verses from a compiled index. It is safe for concurrent use; the
// index is only read.
type Generator struct {
	idx       *index.Compiled
	lineMin   int
	lineMax   int
	maxTokens int
	logger    *slog.Logger

	mu      sync.Mutex
	rng     *mrand.Rand
	entropy *ulid.MonotonicEntropy
}

// New creates a generator over idx.
func New(idx *index.Compiled, opts Options) (*Generator, error) {
	if idx == nil || idx.Rhymes == nil || idx.Chain == nil {
		return nil, fmt.Errorf("generator needs a compiled index: %w", internalerr.ErrInvalidInput)
	}
	if opts.LineMin == 0 {
		opts.LineMin = LineMin
	}
	if opts.LineMax == 0 {
		opts.LineMax = LineMax
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.LineMin < 1 || opts.LineMax < opts.LineMin || opts.MaxTokens <= opts.LineMax {
		return nil, fmt.Errorf("line bounds min=%d max=%d cap=%d: %w",
			opts.LineMin, opts.LineMax, opts.MaxTokens, internalerr.ErrInvalidConfig)
	}
	if opts.Rand == nil {
		opts.Rand = mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Generator{
		idx:       idx,
		lineMin:   opts.LineMin,
		lineMax:   opts.LineMax,
		maxTokens: opts.MaxTokens,
		logger:    opts.Logger,
		rng:       opts.Rand,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Verse generates four lines. One seed forces AAAA, two seeds pick among the pair
// schemes, none picks among all schemes.
func (g *Generator) Verse(seeds []string) (Verse, error) {
	seeds = normalizeSeeds(seeds)

	g.mu.Lock()
	defer g.mu.Unlock()

	var scheme Scheme
	switch len(seeds) {
	case 0:
		scheme = Schemes[g.rng.IntN(len(Schemes))]
	case 1:
		scheme = AAAA
	default:
		scheme = pairSchemes[g.rng.IntN(len(pairSchemes))]
	}
	return g.verse(seeds, scheme)
}

// VerseWithScheme generates four lines in the requested scheme. AAAA accepts at
// most one seed; the pair schemes accept zero or two.
func (g *Generator) VerseWithScheme(seeds []string, scheme Scheme) (Verse, error) {
	seeds = normalizeSeeds(seeds)
	if _, err := ParseScheme(string(scheme)); err != nil {
		return Verse{}, err
	}
	if scheme == AAAA && len(seeds) > 1 {
		return Verse{}, fmt.Errorf("AAAA takes at most one seed, got %d: %w", len(seeds), internalerr.ErrInvalidInput)
	}
	if scheme != AAAA && len(seeds) == 1 {
		return Verse{}, fmt.Errorf("%s needs zero or two seeds: %w", scheme, internalerr.ErrInvalidInput)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verse(seeds, scheme)
}

func (g *Generator) verse(seeds []string, scheme Scheme) (Verse, error) {
	numBars := 2
	if scheme == AAAA {
		numBars = 1
	}
	bars, err := g.bars(seeds, numBars)
	if err != nil {
		return Verse{}, err
	}

	bars = Arrange(bars, scheme)
	for i := range bars {
		bars[i].Text = censor.Line(bars[i].Text)
		bars[i].EndWord = censor.Line(bars[i].EndWord)
	}

	return Verse{
		ID:     ulid.MustNew(ulid.Now(), g.entropy).String(),
		Scheme: scheme,
		Bars:   bars,
	}, nil
}

// Bars picks end words and grows one line per end word, in generation order.
func (g *Generator) Bars(seeds []string, numBars int) ([]Bar, error) {
	seeds = normalizeSeeds(seeds)

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bars(seeds, numBars)
}

func (g *Generator) bars(seeds []string, numBars int) ([]Bar, error) {
	ends, err := g.endWords(seeds, numBars)
	if err != nil {
		return nil, err
	}
	out := make([]Bar, 0, len(ends))
	for _, w := range ends {
		b, err := g.bar(w)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// EndWords selects line end words, in AABB order.
//
// Without seeds a single bar means one AAAA stanza (four rhyming words); N bars means
// N independent rhyming pairs. One seed is joined by three other members of its
// group. Two seeds each get one partner from their own group.
func (g *Generator) EndWords(seeds []string, numBars int) ([]string, error) {
	seeds = normalizeSeeds(seeds)

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endWords(seeds, numBars)
}

func (g *Generator) endWords(seeds []string, numBars int) ([]string, error) {
	rhymes := g.idx.Rhymes

	switch len(seeds) {
	case 0:
		if numBars < 1 {
			return nil, fmt.Errorf("bar count %d: %w", numBars, internalerr.ErrInvalidInput)
		}
		if numBars == 1 {
			return rhymes.RandomRhymingWords(g.rng, 4)
		}
		ends := make([]string, 0, 2*numBars)
		for i := 0; i < numBars; i++ {
			pair, err := rhymes.RandomRhymingWords(g.rng, 2)
			if err != nil {
				return nil, err
			}
			ends = append(ends, pair...)
		}
		return ends, nil

	case 1:
		others, err := g.groupWithout(seeds[0])
		if err != nil {
			return nil, err
		}
		if len(others) < 3 {
			return nil, fmt.Errorf("%q has %d other rhymes, need 3: %w", seeds[0], len(others), internalerr.ErrInsufficientRhymes)
		}
		return append([]string{seeds[0]}, rhyme.Sample(g.rng, others, 3)...), nil

	case 2:
		ends := make([]string, 0, 4)
		for _, seed := range seeds {
			others, err := g.groupWithout(seed)
			if err != nil {
				return nil, err
			}
			if len(others) == 0 {
				return nil, fmt.Errorf("%q has no other rhymes: %w", seed, internalerr.ErrInsufficientRhymes)
			}
			ends = append(ends, seed, others[g.rng.IntN(len(others))])
		}
		return ends, nil

	default:
		return nil, fmt.Errorf("at most two seed words, got %d: %w", len(seeds), internalerr.ErrInvalidInput)
	}
}

func (g *Generator) groupWithout(word string) ([]string, error) {
	group, err := g.idx.Rhymes.RhymingWords(word)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(group, func(w string) bool { return w == word }), nil
}

// Bar grows one line leftward from end.
func (g *Generator) Bar(end string) (Bar, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bar(strings.ToLower(strings.TrimSpace(end)))
}

// bar walks the chain backward from end. Below the minimum length the line may not
// stop; at the maximum it must stop if the current word ever opened a line. The stop
// is forced on reaching lineMax, not one word past it, so lines stay within bounds.
// The walk is cut at maxTokens when the chain never offers a stop.
func (g *Generator) bar(end string) (Bar, error) {
	words := []string{end}
	current := end
	truncated := false

	for {
		if len(words) >= g.maxTokens {
			truncated = true
			g.logger.Warn("line truncated", "end_word", end, "words", len(words))
			break
		}

		mode := markov.MayStop
		switch {
		case len(words) < g.lineMin:
			mode = markov.NoStop
		case len(words) >= g.lineMax:
			mode = markov.MustStop
		}

		step, err := g.idx.Chain.Next(g.rng, current, mode)
		if err != nil {
			return Bar{}, fmt.Errorf("line ending in %q: %w", end, err)
		}
		if step.Stop {
			break
		}
		words = append(words, step.Word)
		current = step.Word
	}

	slices.Reverse(words)
	return Bar{
		Text:      strings.Join(words, " "),
		EndWord:   end,
		Words:     len(words),
		Truncated: truncated,
	}, nil
}

func normalizeSeeds(seeds []string) []string {
	out := make([]string, 0, len(seeds))
	for _, s := range seeds {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
