package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/rhymer/pkg/rhymer/analytics"
	"github.com/cognicore/rhymer/pkg/rhymer/bars"
	"github.com/cognicore/rhymer/pkg/rhymer/config"
)

const testDict = `;;; test dictionary
CAT  K AE1 T
BAT  B AE1 T
HAT  HH AE1 T
SAT  S AE1 T
DAY  D EY1
MAY  M EY1
SAY  S EY1
PLAY  P L EY1
`

var endWords = []string{"cat", "bat", "hat", "sat", "day", "may", "say", "play"}

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func newRunContext(t *testing.T, indexName string) (*runContext, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	var corpus strings.Builder
	for i := 0; i < 64; i++ {
		for j := 0; j < 7; j++ {
			fmt.Fprintf(&corpus, "w%02d ", (i+j)%10)
		}
		corpus.WriteString(endWords[i%len(endWords)] + "\n")
	}

	cfg := &config.Config{
		Corpus:     config.CorpusConfig{Path: createTestFile(t, dir, "corpus.txt", corpus.String())},
		Index:      config.IndexConfig{Path: filepath.Join(dir, indexName)},
		Dictionary: config.DictionaryConfig{Path: createTestFile(t, dir, "cmudict.txt", testDict)},
		Generate:   config.GenerateConfig{LineMin: 6, LineMax: 8, MaxTokens: 24, Seed: 3},
	}
	out := &bytes.Buffer{}
	return &runContext{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:    out,
		format: "text",
	}, out
}

func TestBuildCmd_Run(t *testing.T) {
	for _, name := range []string{"lyrics.ind", "lyrics.db"} {
		t.Run(name, func(t *testing.T) {
			rc, out := newRunContext(t, name)
			if err := (&BuildCmd{}).Run(rc); err != nil {
				t.Fatalf("build: %v", err)
			}
			if !strings.Contains(out.String(), "64 lines") {
				t.Errorf("unexpected output: %s", out.String())
			}
			if _, err := os.Stat(rc.cfg.Index.Path); err != nil {
				t.Errorf("index not written: %v", err)
			}

			out.Reset()
			if err := (&BuildCmd{Force: true}).Run(rc); err != nil {
				t.Fatalf("forced rebuild: %v", err)
			}
		})
	}
}

func TestVerseCmd_Run(t *testing.T) {
	rc, out := newRunContext(t, "lyrics.ind")

	if err := (&VerseCmd{Seeds: []string{"cat"}, Count: 2}).Run(rc); err != nil {
		t.Fatalf("verse: %v", err)
	}
	// Two verses of four lines separated by a blank line.
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 9 || lines[4] != "" {
		t.Fatalf("unexpected verse layout (%d lines):\n%s", len(lines), out.String())
	}

	out.Reset()
	rc.format = "json"
	if err := (&VerseCmd{Seeds: []string{"day", "hat"}, Scheme: "abab", Count: 1}).Run(rc); err != nil {
		t.Fatalf("verse json: %v", err)
	}
	var verses []bars.Verse
	if err := json.Unmarshal(out.Bytes(), &verses); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out.String())
	}
	if len(verses) != 1 || verses[0].Scheme != bars.ABAB || len(verses[0].Bars) != 4 {
		t.Errorf("unexpected verses %+v", verses)
	}

	if err := (&VerseCmd{Scheme: "xyz", Count: 1}).Run(rc); err == nil {
		t.Error("unknown scheme should fail")
	}
}

func TestRhymesCmd_Run(t *testing.T) {
	rc, out := newRunContext(t, "lyrics.ind")
	if err := (&RhymesCmd{Word: "say"}).Run(rc); err != nil {
		t.Fatalf("rhymes: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "day may play say" {
		t.Errorf("rhymes = %q", got)
	}

	if err := (&RhymesCmd{Word: "zebra"}).Run(rc); err == nil {
		t.Error("unknown word should fail")
	}
}

func TestStatsCmd_Run(t *testing.T) {
	rc, out := newRunContext(t, "lyrics.ind")
	rc.format = "yaml"
	if err := (&StatsCmd{Top: 3}).Run(rc); err != nil {
		t.Fatalf("stats: %v", err)
	}
	var s analytics.Stats
	if err := yaml.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, out.String())
	}
	if s.RhymeKeys != 2 || len(s.TopWords) != 3 {
		t.Errorf("unexpected stats: keys=%d top=%d", s.RhymeKeys, len(s.TopWords))
	}
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	s := analytics.Stats{
		RhymeKeys:     1,
		RhymeWords:    12,
		LargestGroups: []analytics.GroupStat{{Key: "AE1T", Size: 12, Words: strings.Fields("a b c d e f g h i j k l")}},
	}
	if err := writeStats(&buf, s); err != nil {
		t.Fatalf("writeStats: %v", err)
	}
	if !strings.Contains(buf.String(), "(+4)") {
		t.Errorf("long groups should be previewed:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Busiest") {
		t.Errorf("empty word list should be omitted")
	}
}

func TestResolveOverrides(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "rhymer.yaml", "index:\n  path: from-file.ind\n")

	cfg, err := resolve(Globals{Config: path, Index: "flag.db", Dict: "d.dict"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Index.Path != "flag.db" || cfg.Dictionary.Path != "d.dict" {
		t.Errorf("flags not applied: %+v %+v", cfg.Index, cfg.Dictionary)
	}
	if cfg.Corpus.Path != "rap_lyrics.txt" {
		t.Errorf("default corpus path lost: %q", cfg.Corpus.Path)
	}
}
