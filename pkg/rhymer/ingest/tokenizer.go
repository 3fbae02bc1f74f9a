package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanLine strips HTML tags and decodes entities from lines scraped off lyrics
// pages ("I got 99 problems<br/>", "rock &amp; roll"). Lines without markup are
// returned unchanged.
func CleanLine(line string) string {
	if !strings.ContainsAny(line, "<&") {
		return line
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(line))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// tags separate words
			b.WriteByte(' ')
		}
	}
}

// Tokenize splits a line on whitespace and lowercases every word.
func Tokenize(line string) []string {
	fields := strings.Fields(line)
	words := fields[:0]
	for _, f := range fields {
		w := strings.ToLower(strings.TrimSpace(f))
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
