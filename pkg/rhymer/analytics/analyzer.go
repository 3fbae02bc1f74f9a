// Package analytics summarizes a compiled index: how rhyme groups are distributed
// and how the reverse chain branches.
package analytics

import (
	"sort"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
)

// DefaultTopK is the number of groups and words listed when topK <= 0.
const DefaultTopK = 10

// GroupStat is one rhyme group and its size.
type GroupStat struct {
	Key   string   `json:"key" yaml:"key"`
	Size  int      `json:"size" yaml:"size"`
	Words []string `json:"words" yaml:"words"`
}

// WordStat is one chain word with its fan-out.
type WordStat struct {
	Word         string `json:"word" yaml:"word"`
	Predecessors int    `json:"predecessors" yaml:"predecessors"`
	Transitions  int64  `json:"transitions" yaml:"transitions"`
	Starts       int64  `json:"starts" yaml:"starts"`
}

// Stats exposes the aggregated counts.
type Stats struct {
	Meta index.Meta `json:"meta" yaml:"meta"`

	RhymeKeys    int `json:"rhyme_keys" yaml:"rhyme_keys"`
	RhymeWords   int `json:"rhyme_words" yaml:"rhyme_words"`
	PairGroups   int `json:"pair_groups" yaml:"pair_groups"`     // size >= 2, usable for pair schemes
	StanzaGroups int `json:"stanza_groups" yaml:"stanza_groups"` // size >= 4, usable for AAAA
	Singletons   int `json:"singletons" yaml:"singletons"`

	ChainWords       int     `json:"chain_words" yaml:"chain_words"`
	ChainEdges       int     `json:"chain_edges" yaml:"chain_edges"`
	Transitions      int64   `json:"transitions" yaml:"transitions"`
	StartCount       int64   `json:"start_count" yaml:"start_count"`
	StartWords       int     `json:"start_words" yaml:"start_words"`
	NeverStops       int     `json:"never_stops" yaml:"never_stops"` // words with no line start count
	MeanPredecessors float64 `json:"mean_predecessors" yaml:"mean_predecessors"`

	LargestGroups []GroupStat `json:"largest_groups" yaml:"largest_groups"`
	TopWords      []WordStat  `json:"top_words" yaml:"top_words"`
}

// Analyze walks both halves of x. Ties are broken by key or word so the output
// is stable for a given index.
func Analyze(x *index.Compiled, topK int) Stats {
	if topK <= 0 {
		topK = DefaultTopK
	}
	s := Stats{Meta: x.Meta}

	groups := x.Rhymes.Groups()
	s.RhymeKeys = len(groups)
	all := make([]GroupStat, 0, len(groups))
	for key, words := range groups {
		s.RhymeWords += len(words)
		switch {
		case len(words) >= 4:
			s.StanzaGroups++
			s.PairGroups++
		case len(words) >= 2:
			s.PairGroups++
		default:
			s.Singletons++
		}
		all = append(all, GroupStat{Key: key, Size: len(words), Words: words})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Size == all[j].Size {
			return all[i].Key < all[j].Key
		}
		return all[i].Size > all[j].Size
	})
	s.LargestGroups = truncate(all, topK)

	words := x.Chain.Words()
	s.ChainWords = len(words)
	ws := make([]WordStat, 0, len(words))
	for _, w := range words {
		n, _ := x.Chain.Node(w)
		total := n.Total() - n.Starts
		s.ChainEdges += len(n.Prev)
		s.Transitions += total
		s.StartCount += n.Starts
		if n.Starts > 0 {
			s.StartWords++
		} else {
			s.NeverStops++
		}
		ws = append(ws, WordStat{Word: w, Predecessors: len(n.Prev), Transitions: total, Starts: n.Starts})
	}
	if s.ChainWords > 0 {
		s.MeanPredecessors = float64(s.ChainEdges) / float64(s.ChainWords)
	}
	sort.SliceStable(ws, func(i, j int) bool {
		return ws[i].Transitions > ws[j].Transitions
	})
	s.TopWords = truncate(ws, topK)

	return s
}

func truncate[T any](in []T, n int) []T {
	if len(in) > n {
		return in[:n]
	}
	return in
}
