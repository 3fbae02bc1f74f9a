package analytics

import (
	"testing"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/ingest"
	"github.com/cognicore/rhymer/pkg/rhymer/phonetic"
)

func buildIndex(t *testing.T, lines ...[]string) *index.Compiled {
	t.Helper()
	dict := phonetic.NewDict(map[string][][]string{
		"cat": {{"K", "AE1", "T"}},
		"bat": {{"B", "AE1", "T"}},
		"hat": {{"HH", "AE1", "T"}},
		"sat": {{"S", "AE1", "T"}},
	})
	x := index.New(dict)
	for _, words := range lines {
		if err := ingest.AddLine(x, words); err != nil {
			t.Fatalf("AddLine(%v): %v", words, err)
		}
	}
	x.Freeze()
	return x
}

func TestAnalyze(t *testing.T) {
	x := buildIndex(t,
		[]string{"the", "cat", "sat"},
		[]string{"a", "bat", "sat"},
		[]string{"the", "hat"},
	)

	s := Analyze(x, 2)

	if s.RhymeKeys != 1 || s.RhymeWords != 2 {
		t.Errorf("rhyme keys/words = %d/%d, want 1/2", s.RhymeKeys, s.RhymeWords)
	}
	if s.PairGroups != 1 || s.StanzaGroups != 0 || s.Singletons != 0 {
		t.Errorf("group classes = %d/%d/%d, want 1/0/0", s.PairGroups, s.StanzaGroups, s.Singletons)
	}
	if s.ChainWords != 6 || s.ChainEdges != 5 || s.Transitions != 5 {
		t.Errorf("chain words/edges/transitions = %d/%d/%d, want 6/5/5", s.ChainWords, s.ChainEdges, s.Transitions)
	}
	if s.StartCount != 3 || s.StartWords != 2 || s.NeverStops != 4 {
		t.Errorf("starts count/words/never = %d/%d/%d, want 3/2/4", s.StartCount, s.StartWords, s.NeverStops)
	}

	if len(s.LargestGroups) != 1 || s.LargestGroups[0].Size != 2 {
		t.Fatalf("largest groups = %+v", s.LargestGroups)
	}
	if got := s.LargestGroups[0].Words; got[0] != "hat" || got[1] != "sat" {
		t.Errorf("group words = %v, want [hat sat]", got)
	}

	if len(s.TopWords) != 2 {
		t.Fatalf("expected 2 top words, got %d", len(s.TopWords))
	}
	if s.TopWords[0].Word != "sat" || s.TopWords[0].Predecessors != 2 {
		t.Errorf("top word = %+v, want sat with 2 predecessors", s.TopWords[0])
	}
	if s.TopWords[1].Word != "bat" {
		t.Errorf("ties should break alphabetically, got %q", s.TopWords[1].Word)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	s := Analyze(buildIndex(t), 0)
	if s.RhymeKeys != 0 || s.ChainWords != 0 || s.MeanPredecessors != 0 {
		t.Errorf("empty index stats = %+v", s)
	}
	if len(s.LargestGroups) != 0 || len(s.TopWords) != 0 {
		t.Errorf("empty index should list nothing")
	}
}
