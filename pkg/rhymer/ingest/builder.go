// Package ingest streams a lyrics corpus into a compiled index.
package ingest

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/phonetic"
)

// progressEvery controls how often Build logs progress and checks for cancellation.
const progressEvery = 10000

// Stats summarizes one build.
type Stats struct {
	Lines      int64
	BlankLines int64
	Words      int64
	EndWords   int64
	Duration   time.Duration
}

// Builder turns corpus lines into rhyme and chain entries.
type Builder struct {
	classifier phonetic.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewBuilder creates a builder. A nil logger falls back to slog.Default().
func NewBuilder(c phonetic.Classifier, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{classifier: c, logger: logger, now: time.Now}
}

// Build consumes r line by line and returns a frozen compiled index.
func (b *Builder) Build(ctx context.Context, r io.Reader) (*index.Compiled, Stats, error) {
	start := b.now()
	x := index.New(b.classifier)
	var stats Stats

	hasher := blake3.New()
	scanner := bufio.NewScanner(io.TeeReader(r, hasher))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			stats.BlankLines++
			continue
		}

		words := Tokenize(CleanLine(line))
		if len(words) == 0 {
			stats.BlankLines++
			continue
		}
		if err := AddLine(x, words); err != nil {
			return nil, Stats{}, err
		}

		stats.Lines++
		stats.Words += int64(len(words))
		if len(words) > 1 {
			stats.EndWords++
		}

		if stats.Lines%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, err
			}
			b.logger.Debug("indexing corpus", "lines", stats.Lines, "rhyme_keys", x.Rhymes.Len(), "chain_words", x.Chain.Len())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("read corpus: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	x.Meta.BuiltAt = start.UTC()
	x.Meta.CorpusDigest = hex.EncodeToString(hasher.Sum(nil))
	x.Meta.Lines = stats.Lines
	x.Meta.Words = stats.Words
	x.Freeze()

	stats.Duration = b.now().Sub(start)
	b.logger.Info("corpus indexed",
		"lines", stats.Lines,
		"words", stats.Words,
		"rhyme_keys", x.Rhymes.Len(),
		"chain_words", x.Chain.Len(),
		"duration", stats.Duration,
	)
	return x, stats, nil
}

// AddLine indexes one tokenized line w0..wn. The last word of a multi-word line is
// registered as a rhyme; every word points back at the word before it and w0 is
// marked as a line start.
func AddLine(x *index.Compiled, words []string) error {
	n := len(words) - 1
	if n < 0 {
		return nil
	}
	if n > 0 {
		if err := x.Rhymes.Add(words[n]); err != nil {
			return err
		}
	}
	for i := n; i > 0; i-- {
		if err := x.Chain.AddTransition(words[i], words[i-1]); err != nil {
			return err
		}
	}
	return x.Chain.AddStart(words[0])
}

// Digest returns the hex BLAKE3 digest of r, matching Meta.CorpusDigest.
func Digest(r io.Reader) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
