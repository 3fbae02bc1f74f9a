// Package rhymer wires the compiled index, its store and the bar generator into a
// single entry point.
package rhymer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/rhymer/pkg/rhymer/analytics"
	"github.com/cognicore/rhymer/pkg/rhymer/bars"
	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/ingest"
	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/phonetic"
	"github.com/cognicore/rhymer/pkg/rhymer/store"
	"github.com/cognicore/rhymer/pkg/rhymer/store/blob"
	"github.com/cognicore/rhymer/pkg/rhymer/store/sqlite"
)

// Rhymer is the verse generation facade.
type Rhymer struct {
	store  store.Store
	index  *index.Compiled
	gen    *bars.Generator
	logger *slog.Logger
}

// Options configures a Rhymer instance.
type Options struct {
	Store      store.Store
	Classifier phonetic.Classifier
	CorpusPath string
	Logger     *slog.Logger

	LineMin   int
	LineMax   int
	MaxTokens int
	// Seed makes generation reproducible. Zero draws a random seed.
	Seed uint64
}

// New loads the compiled index from opts.Store, building it from opts.CorpusPath
// first when the store is empty.
func New(ctx context.Context, opts Options) (*Rhymer, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("rhymer needs a store: %w", internalerr.ErrInvalidInput)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	x, err := BuildOrLoadIndex(ctx, opts.CorpusPath, opts.Store, opts.Classifier, opts.Logger)
	if err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	}
	gen, err := bars.New(x, bars.Options{
		LineMin:   opts.LineMin,
		LineMax:   opts.LineMax,
		MaxTokens: opts.MaxTokens,
		Rand:      rng,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Rhymer{store: opts.Store, index: x, gen: gen, logger: opts.Logger}, nil
}

// Close cleanly shuts down the Rhymer instance.
func (r *Rhymer) Close() error {
	return r.store.Close()
}

// Index returns the loaded compiled index. It is frozen.
func (r *Rhymer) Index() *index.Compiled {
	return r.index
}

// GenerateVerse returns four rhyming lines for up to two seed end words.
func (r *Rhymer) GenerateVerse(seeds ...string) (bars.Verse, error) {
	return r.gen.Verse(seeds)
}

// GenerateVerseWithScheme is GenerateVerse with a fixed rhyme scheme.
func (r *Rhymer) GenerateVerseWithScheme(scheme bars.Scheme, seeds ...string) (bars.Verse, error) {
	return r.gen.VerseWithScheme(seeds, scheme)
}

// Rhymes returns every indexed word sharing word's rhyme group.
func (r *Rhymer) Rhymes(word string) ([]string, error) {
	return r.index.Rhymes.RhymingWords(strings.ToLower(strings.TrimSpace(word)))
}

// Stats summarizes the loaded index.
func (r *Rhymer) Stats(topK int) analytics.Stats {
	return analytics.Analyze(r.index, topK)
}

// OpenStore picks a backend by extension: .db, .sqlite and .sqlite3 open SQLite,
// anything else the compressed file store.
func OpenStore(ctx context.Context, path string) (store.Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		st, err := sqlite.OpenSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w: %w", path, internalerr.ErrStoreUnavailable, err)
		}
		return st, nil
	default:
		return blob.Open(path)
	}
}

// BuildOrLoadIndex returns the compiled index held by st. When st is empty the
// corpus is streamed, compiled and saved first. A loaded index whose corpus digest
// no longer matches corpusPath is used as is; a warning asks for a rebuild.
func BuildOrLoadIndex(ctx context.Context, corpusPath string, st store.Store, c phonetic.Classifier, logger *slog.Logger) (*index.Compiled, error) {
	if logger == nil {
		logger = slog.Default()
	}

	exists, err := st.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check index: %w", err)
	}
	if exists {
		return loadIndex(ctx, corpusPath, st, c, logger)
	}

	if c == nil {
		return nil, fmt.Errorf("building an index needs a classifier: %w", internalerr.ErrInvalidInput)
	}
	f, err := os.Open(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	x, _, err := ingest.NewBuilder(c, logger).Build(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := st.Save(ctx, x.Snapshot()); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}
	logger.Info("index saved", "rhyme_keys", x.Rhymes.Len(), "chain_words", x.Chain.Len())
	return x, nil
}

func loadIndex(ctx context.Context, corpusPath string, st store.Store, c phonetic.Classifier, logger *slog.Logger) (*index.Compiled, error) {
	snap, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	x, err := index.FromSnapshot(snap, c)
	if err != nil {
		return nil, err
	}
	logger.Debug("index loaded", "built_at", x.Meta.BuiltAt, "lines", x.Meta.Lines)

	if corpusPath == "" || x.Meta.CorpusDigest == "" {
		return x, nil
	}
	f, err := os.Open(corpusPath)
	if errors.Is(err, os.ErrNotExist) {
		return x, nil
	}
	if err != nil {
		logger.Warn("corpus unreadable, skipping staleness check", "path", corpusPath, "error", err)
		return x, nil
	}
	defer f.Close()
	digest, err := ingest.Digest(f)
	if err != nil {
		logger.Warn("corpus digest failed", "path", corpusPath, "error", err)
		return x, nil
	}
	if digest != x.Meta.CorpusDigest {
		logger.Warn("index is stale, remove it to rebuild", "path", corpusPath,
			"index_digest", x.Meta.CorpusDigest, "corpus_digest", digest)
	}
	return x, nil
}
