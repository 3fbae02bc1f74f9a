// Package censor masks a fixed list of slurs in generated lines.
//
// This is plain substring replacement. It catches the listed spellings only and is
// not a content-safety filter.
package censor

import "strings"

// Rule replaces every occurrence of Pattern with Mask.
type Rule struct {
	Pattern string
	Mask    string
}

var rules = []Rule{
	{Pattern: "nigg", Mask: "n*gg"},
	{Pattern: "fag", Mask: "f*g"},
}

// Rules returns a copy of the fixed rule list.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Line masks every rule occurrence in line.
func Line(line string) string {
	for _, r := range rules {
		if strings.Contains(line, r.Pattern) {
			line = strings.ReplaceAll(line, r.Pattern, r.Mask)
		}
	}
	return line
}

// Lines masks each line in place and returns the slice.
func Lines(lines []string) []string {
	for i := range lines {
		lines[i] = Line(lines[i])
	}
	return lines
}
