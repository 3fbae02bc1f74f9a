package phonetic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// errSkipLine signals that a line should be skipped (comment, empty, etc.).
var errSkipLine = errors.New("skip line")

// Dict is a Classifier backed by the CMU Pronouncing Dictionary.
type Dict struct {
	entries map[string][][]string
}

// Stats holds parser statistics for logging.
type Stats struct {
	TotalLines   int
	CommentLines int
	ParsedLines  int
	UniqueWords  int
}

// NewDict builds a dictionary from literal pronunciations. Keys are lowercased.
func NewDict(entries map[string][][]string) *Dict {
	d := &Dict{entries: make(map[string][][]string, len(entries))}
	for word, prons := range entries {
		key := strings.ToLower(strings.TrimSpace(word))
		for _, p := range prons {
			d.entries[key] = append(d.entries[key], append([]string(nil), p...))
		}
	}
	return d
}

// PhonemesFor implements Classifier.
func (d *Dict) PhonemesFor(word string) [][]string {
	return d.entries[strings.ToLower(strings.TrimSpace(word))]
}

// Len returns the number of distinct words.
func (d *Dict) Len() int {
	return len(d.entries)
}

// LoadCMU reads a CMU dict file from disk.
func LoadCMU(filePath string) (*Dict, Stats, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return ParseCMU(f)
}

// ParseCMU parses both the classic "WORD  PH PH" layout with "WORD(2)" variants and
// ";;;" comments, and the cmudict.dict layout "word ph ph # comment".
func ParseCMU(r io.Reader) (*Dict, Stats, error) {
	d := &Dict{entries: make(map[string][][]string)}
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.TotalLines++
		line := scanner.Text()

		word, variant, phones, err := parseLine(line)
		if err == errSkipLine {
			if strings.HasPrefix(line, ";;;") {
				stats.CommentLines++
			}
			continue
		}

		stats.ParsedLines++
		d.insert(word, variant, phones)
	}

	if err := scanner.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("scanner error: %w", err)
	}

	stats.UniqueWords = len(d.entries)
	return d, stats, nil
}

// insert places a pronunciation at its variant slot so the primary one stays first
// even when variants appear out of order.
func (d *Dict) insert(word string, variant int, phones []string) {
	prons := d.entries[word]
	if variant >= len(prons) {
		d.entries[word] = append(prons, phones)
		return
	}
	prons = append(prons, nil)
	copy(prons[variant+1:], prons[variant:])
	prons[variant] = phones
	d.entries[word] = prons
}

func parseLine(line string) (string, int, []string, error) {
	if strings.HasPrefix(line, ";;;") {
		return "", 0, nil, errSkipLine
	}
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", 0, nil, errSkipLine
	}

	word, variant := parseWordAndVariant(fields[0])
	if word == "" {
		return "", 0, nil, errSkipLine
	}

	phones := make([]string, len(fields)-1)
	for i, p := range fields[1:] {
		phones[i] = strings.ToUpper(p)
	}
	return word, variant, phones, nil
}

// parseWordAndVariant splits "HOUSE(2)" into "house" and variant index 1.
func parseWordAndVariant(raw string) (string, int) {
	idx := strings.IndexByte(raw, '(')
	if idx == -1 {
		return strings.ToLower(raw), 0
	}

	end := strings.IndexByte(raw[idx:], ')')
	if end == -1 {
		return strings.ToLower(raw), 0
	}

	n, err := strconv.Atoi(raw[idx+1 : idx+end])
	if err != nil || n < 1 {
		return strings.ToLower(raw), 0
	}
	return strings.ToLower(raw[:idx]), n - 1
}
