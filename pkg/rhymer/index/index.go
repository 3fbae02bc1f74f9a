// Package index bundles the rhyme index and the reverse chain into the compiled
// unit that is built once per corpus, persisted, and loaded read-only.
package index

import (
	"fmt"
	"time"

	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/markov"
	"github.com/cognicore/rhymer/pkg/rhymer/phonetic"
	"github.com/cognicore/rhymer/pkg/rhymer/rhyme"
)

// SchemaVersion is the snapshot layout written by this package.
const SchemaVersion = 1

// Meta describes how a compiled index was produced.
type Meta struct {
	Version      int       `json:"version" yaml:"version"`
	BuiltAt      time.Time `json:"built_at" yaml:"built_at"`
	CorpusDigest string    `json:"corpus_digest,omitempty" yaml:"corpus_digest,omitempty"`
	Lines        int64     `json:"lines" yaml:"lines"`
	Words        int64     `json:"words" yaml:"words"`
}

// Compiled is the {rhyme index, chain} pair.
type Compiled struct {
	Meta   Meta
	Rhymes *rhyme.Index
	Chain  *markov.Chain
}

// New creates an empty, mutable compiled index.
func New(c phonetic.Classifier) *Compiled {
	return &Compiled{
		Meta:   Meta{Version: SchemaVersion},
		Rhymes: rhyme.New(c),
		Chain:  markov.New(),
	}
}

// Freeze makes both halves read-only.
func (x *Compiled) Freeze() {
	x.Rhymes.Freeze()
	x.Chain.Freeze()
}

// Snapshot is the persisted schema: two named mappings plus metadata.
type Snapshot struct {
	Version int                  `json:"version"`
	Meta    Meta                 `json:"meta"`
	Rhymes  map[string][]string  `json:"rhymes"`
	Chain   map[string]ChainNode `json:"chain"`
}

// ChainNode is the persisted form of markov.Node.
type ChainNode struct {
	Starts int64            `json:"starts,omitempty"`
	Prev   map[string]int64 `json:"prev,omitempty"`
}

// Snapshot exports the index.
func (x *Compiled) Snapshot() Snapshot {
	s := Snapshot{
		Version: SchemaVersion,
		Meta:    x.Meta,
		Rhymes:  x.Rhymes.Groups(),
		Chain:   make(map[string]ChainNode, x.Chain.Len()),
	}
	s.Meta.Version = SchemaVersion
	for _, w := range x.Chain.Words() {
		n, _ := x.Chain.Node(w)
		s.Chain[w] = ChainNode{Starts: n.Starts, Prev: n.Prev}
	}
	return s
}

// FromSnapshot rebuilds a frozen index. Snapshots written by a newer schema are
// rejected; unknown fields are ignored by the decoders.
func FromSnapshot(s Snapshot, c phonetic.Classifier) (*Compiled, error) {
	if s.Version > SchemaVersion {
		return nil, fmt.Errorf("snapshot version %d, supported %d: %w", s.Version, SchemaVersion, internalerr.ErrUnsupportedVersion)
	}
	if s.Version < 1 {
		return nil, fmt.Errorf("snapshot version %d: %w", s.Version, internalerr.ErrInvalidInput)
	}

	x := New(c)
	x.Meta = s.Meta
	for key, words := range s.Rhymes {
		if err := x.Rhymes.Restore(key, words...); err != nil {
			return nil, err
		}
	}
	for word, n := range s.Chain {
		if err := x.Chain.Restore(word, n.Starts, n.Prev); err != nil {
			return nil, err
		}
	}
	x.Freeze()
	return x, nil
}
