// Command rhymer builds a rhyme/chain index from a lyrics corpus and generates
// rhyming verses from it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/rhymer/internal/logging"
	"github.com/cognicore/rhymer/pkg/rhymer"
	"github.com/cognicore/rhymer/pkg/rhymer/analytics"
	"github.com/cognicore/rhymer/pkg/rhymer/bars"
	"github.com/cognicore/rhymer/pkg/rhymer/config"
	"github.com/cognicore/rhymer/pkg/rhymer/phonetic"
)

const version = "0.1.0"

// CLI defines the command-line interface for rhymer.
var CLI struct {
	Globals

	Build   BuildCmd   `cmd:"" help:"Compile the corpus into an index"`
	Verse   VerseCmd   `cmd:"" help:"Generate rhyming verses"`
	Rhymes  RhymesCmd  `cmd:"" help:"List indexed words that rhyme with a word"`
	Stats   StatsCmd   `cmd:"" help:"Summarize the compiled index"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Globals are flags shared by every command. Path flags override the config file.
type Globals struct {
	Config string `name:"config" short:"c" help:"YAML config file" type:"path"`
	Corpus string `help:"Corpus file, one lyric line per record" type:"path"`
	Index  string `help:"Index location (.db/.sqlite for SQLite, otherwise compressed file)" type:"path"`
	Dict   string `help:"CMU pronouncing dictionary" type:"path"`
	Format string `short:"f" help:"Output format" enum:"text,json,yaml" default:"text"`
}

// runContext carries what every command needs once flags and config are resolved.
type runContext struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	format string
}

// BuildCmd compiles the corpus.
type BuildCmd struct {
	Force bool `help:"Remove an existing index and rebuild it"`
}

func (c *BuildCmd) Run(rc *runContext) error {
	st, err := rhymer.OpenStore(rc.ctx, rc.cfg.Index.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if c.Force {
		if err := st.Remove(rc.ctx); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
	}
	dict, err := loadDict(rc)
	if err != nil {
		return err
	}
	x, err := rhymer.BuildOrLoadIndex(rc.ctx, rc.cfg.Corpus.Path, st, dict, rc.logger)
	if err != nil {
		return err
	}
	return render(rc.out, rc.format, x.Meta, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "index %s: %d lines, %d words, built %s\n",
			rc.cfg.Index.Path, x.Meta.Lines, x.Meta.Words, x.Meta.BuiltAt.Format("2006-01-02 15:04:05"))
		return err
	})
}

// VerseCmd generates verses.
type VerseCmd struct {
	Seeds  []string `arg:"" optional:"" help:"Up to two end words to rhyme on"`
	Scheme string   `short:"s" help:"Rhyme scheme (AAAA, AABB, ABAB, ABBA); random when empty"`
	Count  int      `short:"n" help:"Number of verses" default:"1"`
	Seed   uint64   `help:"Random seed; overrides the config"`
}

func (c *VerseCmd) Run(rc *runContext) error {
	if c.Seed != 0 {
		rc.cfg.Generate.Seed = c.Seed
	}
	r, err := openRhymer(rc)
	if err != nil {
		return err
	}
	defer r.Close()

	verses := make([]bars.Verse, 0, c.Count)
	for i := 0; i < c.Count; i++ {
		var v bars.Verse
		if c.Scheme != "" {
			scheme, err := bars.ParseScheme(c.Scheme)
			if err != nil {
				return err
			}
			v, err = r.GenerateVerseWithScheme(scheme, c.Seeds...)
			if err != nil {
				return err
			}
		} else {
			v, err = r.GenerateVerse(c.Seeds...)
			if err != nil {
				return err
			}
		}
		verses = append(verses, v)
	}

	return render(rc.out, rc.format, verses, func(w io.Writer) error {
		return writeVerses(w, verses)
	})
}

// RhymesCmd lists a word's rhyme group.
type RhymesCmd struct {
	Word string `arg:"" help:"Word to look up"`
}

func (c *RhymesCmd) Run(rc *runContext) error {
	r, err := openRhymer(rc)
	if err != nil {
		return err
	}
	defer r.Close()

	words, err := r.Rhymes(c.Word)
	if err != nil {
		return err
	}
	return render(rc.out, rc.format, words, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, strings.Join(words, " "))
		return err
	})
}

// StatsCmd prints index statistics.
type StatsCmd struct {
	Top int `help:"Number of groups and words to list" default:"10"`
}

func (c *StatsCmd) Run(rc *runContext) error {
	r, err := openRhymer(rc)
	if err != nil {
		return err
	}
	defer r.Close()

	s := r.Stats(c.Top)
	return render(rc.out, rc.format, s, func(w io.Writer) error {
		return writeStats(w, s)
	})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(rc *runContext) error {
	_, err := fmt.Fprintf(rc.out, "rhymer version %s\n", version)
	return err
}

func loadDict(rc *runContext) (*phonetic.Dict, error) {
	dict, stats, err := phonetic.LoadCMU(rc.cfg.Dictionary.Path)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	rc.logger.Debug("dictionary loaded", "path", rc.cfg.Dictionary.Path, "words", stats.UniqueWords)
	return dict, nil
}

func openRhymer(rc *runContext) (*rhymer.Rhymer, error) {
	dict, err := loadDict(rc)
	if err != nil {
		return nil, err
	}
	st, err := rhymer.OpenStore(rc.ctx, rc.cfg.Index.Path)
	if err != nil {
		return nil, err
	}
	g := rc.cfg.Generate
	r, err := rhymer.New(rc.ctx, rhymer.Options{
		Store:      st,
		Classifier: dict,
		CorpusPath: rc.cfg.Corpus.Path,
		Logger:     rc.logger,
		LineMin:    g.LineMin,
		LineMax:    g.LineMax,
		MaxTokens:  g.MaxTokens,
		Seed:       g.Seed,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return r, nil
}

// render writes v as JSON or YAML, or calls text for the plain format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func writeVerses(w io.Writer, verses []bars.Verse) error {
	for i, v := range verses {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		for _, line := range v.Lines() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeStats(w io.Writer, s analytics.Stats) error {
	fmt.Fprintf(w, "Index built %s from %d lines (%d words)\n",
		s.Meta.BuiltAt.Format("2006-01-02 15:04:05"), s.Meta.Lines, s.Meta.Words)
	fmt.Fprintf(w, "Rhyme keys: %d (%d words), %d usable for pairs, %d for AAAA, %d singletons\n",
		s.RhymeKeys, s.RhymeWords, s.PairGroups, s.StanzaGroups, s.Singletons)
	fmt.Fprintf(w, "Chain: %d words, %d edges, %d transitions, %.2f predecessors per word\n",
		s.ChainWords, s.ChainEdges, s.Transitions, s.MeanPredecessors)
	fmt.Fprintf(w, "Line starts: %d across %d words, %d words never open a line\n",
		s.StartCount, s.StartWords, s.NeverStops)

	if len(s.LargestGroups) > 0 {
		fmt.Fprintln(w, "\nLargest rhyme groups:")
		for _, g := range s.LargestGroups {
			fmt.Fprintf(w, "  %-12s %5d  %s\n", g.Key, g.Size, preview(g.Words, 8))
		}
	}
	if len(s.TopWords) > 0 {
		fmt.Fprintln(w, "\nBusiest chain words:")
		for _, ws := range s.TopWords {
			fmt.Fprintf(w, "  %-16s %6d transitions  %4d predecessors  %4d starts\n",
				ws.Word, ws.Transitions, ws.Predecessors, ws.Starts)
		}
	}
	return nil
}

func preview(words []string, n int) string {
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + fmt.Sprintf(" ... (+%d)", len(words)-n)
}

// resolve loads the config and applies flag overrides.
func resolve(g Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Corpus != "" {
		cfg.Corpus.Path = g.Corpus
	}
	if g.Index != "" {
		cfg.Index.Path = g.Index
	}
	if g.Dict != "" {
		cfg.Dictionary.Path = g.Dict
	}
	return cfg, nil
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("rhymer"),
		kong.Description("Rhyming verse generator backed by a reverse Markov chain"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	cfg, err := resolve(CLI.Globals)
	kctx.FatalIfErrorf(err)

	rc := &runContext{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logging.New(cfg.Log),
		out:    os.Stdout,
		format: CLI.Format,
	}
	err = kctx.Run(rc)
	kctx.FatalIfErrorf(err)
}
