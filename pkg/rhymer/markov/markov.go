// Package markov holds the reverse word chain: for each word, how often every other
// word preceded it and how often it opened a line.
package markov

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
)

// Mode constrains whether a traversal step may end the line.
type Mode int

const (
	// MayStop samples the line start like any other predecessor.
	MayStop Mode = iota
	// NoStop excludes the line start from the candidates.
	NoStop
	// MustStop returns the line start whenever it has been observed.
	MustStop
)

func (m Mode) String() string {
	switch m {
	case NoStop:
		return "no-stop"
	case MustStop:
		return "must-stop"
	default:
		return "may-stop"
	}
}

// Step is the outcome of one traversal. Stop marks the line-start sentinel; Word is
// empty in that case.
type Step struct {
	Word string
	Stop bool
}

// Node is the predecessor context of one word.
type Node struct {
	Prev   map[string]int64
	Starts int64
}

// Total returns the number of observations, line starts included.
func (n Node) Total() int64 {
	total := n.Starts
	for _, c := range n.Prev {
		total += c
	}
	return total
}

// Chain is the reverse Markov index.
type Chain struct {
	nodes  map[string]*Node
	frozen bool
}

// New creates an empty chain.
func New() *Chain {
	return &Chain{nodes: make(map[string]*Node)}
}

func (c *Chain) node(word string) *Node {
	n, ok := c.nodes[word]
	if !ok {
		n = &Node{Prev: make(map[string]int64)}
		c.nodes[word] = n
	}
	return n
}

// AddTransition records that prev preceded word.
func (c *Chain) AddTransition(word, prev string) error {
	if c.frozen {
		return internalerr.ErrFrozen
	}
	c.node(word).Prev[prev]++
	return nil
}

// AddStart records that word opened a line.
func (c *Chain) AddStart(word string) error {
	if c.frozen {
		return internalerr.ErrFrozen
	}
	c.node(word).Starts++
	return nil
}

// Restore adds counts for word in bulk. Counts add to what is already present.
func (c *Chain) Restore(word string, starts int64, prev map[string]int64) error {
	if c.frozen {
		return internalerr.ErrFrozen
	}
	n := c.node(word)
	n.Starts += starts
	for p, cnt := range prev {
		if cnt > 0 {
			n.Prev[p] += cnt
		}
	}
	return nil
}

// Freeze makes the chain read-only.
func (c *Chain) Freeze() {
	c.frozen = true
}

// Frozen reports whether Freeze was called.
func (c *Chain) Frozen() bool {
	return c.frozen
}

// Next draws a predecessor of word. Every candidate is weighted by its observation
// count, so a predecessor seen three times is three times as likely as one seen once.
// An empty candidate set yields the line start.
func (c *Chain) Next(rng *rand.Rand, word string, mode Mode) (Step, error) {
	n, ok := c.nodes[word]
	if !ok {
		return Step{}, fmt.Errorf("%q: %w", word, internalerr.ErrUnknownWord)
	}

	if mode == MustStop && n.Starts > 0 {
		return Step{Stop: true}, nil
	}

	starts := n.Starts
	if mode == NoStop {
		starts = 0
	}

	prevs := sortedKeys(n.Prev)
	total := starts
	for _, p := range prevs {
		total += n.Prev[p]
	}
	if total == 0 {
		return Step{Stop: true}, nil
	}

	r := rng.Int64N(total)
	if r < starts {
		return Step{Stop: true}, nil
	}
	r -= starts
	for _, p := range prevs {
		if r < n.Prev[p] {
			return Step{Word: p}, nil
		}
		r -= n.Prev[p]
	}
	// unreachable: r < total
	return Step{Stop: true}, nil
}

// Node returns a copy of word's context.
func (c *Chain) Node(word string) (Node, bool) {
	n, ok := c.nodes[word]
	if !ok {
		return Node{}, false
	}
	cp := Node{Starts: n.Starts, Prev: make(map[string]int64, len(n.Prev))}
	for p, cnt := range n.Prev {
		cp.Prev[p] = cnt
	}
	return cp, true
}

// Has reports whether word is a key of the chain.
func (c *Chain) Has(word string) bool {
	_, ok := c.nodes[word]
	return ok
}

// Words returns every key word, sorted.
func (c *Chain) Words() []string {
	return sortedKeys(c.nodes)
}

// Len returns the number of key words.
func (c *Chain) Len() int {
	return len(c.nodes)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
