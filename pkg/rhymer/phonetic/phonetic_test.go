package phonetic

import (
	"reflect"
	"strings"
	"testing"
)

func TestIsStressed(t *testing.T) {
	tests := []struct {
		phoneme string
		want    bool
	}{
		{"AE1", true},
		{"AH0", true},
		{"OW2", true},
		{"T", false},
		{"NG", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsStressed(tt.phoneme); got != tt.want {
			t.Errorf("IsStressed(%q) = %v, want %v", tt.phoneme, got, tt.want)
		}
	}
}

func TestRhymeKey(t *testing.T) {
	tests := []struct {
		name   string
		phones []string
		want   string
		ok     bool
	}{
		{"cat", []string{"K", "AE1", "T"}, "TAE1", true},
		{"record", []string{"R", "AH0", "K", "AO1", "R", "D"}, "DRAO1", true},
		{"vowel final", []string{"S", "IY1"}, "IY1", true},
		{"no stress", []string{"HH", "M"}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RhymeKey(tt.phones)
			if ok != tt.ok || got != tt.want {
				t.Errorf("RhymeKey(%v) = %q, %v; want %q, %v", tt.phones, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCandidateKeysShortestFirst(t *testing.T) {
	tests := []struct {
		phones []string
		want   []string
	}{
		{[]string{"K", "AE1", "T"}, []string{"TAE1"}},
		{[]string{"R", "AH0", "K", "AO1", "R", "D"}, []string{"DRAO1", "DRAO1KAH0"}},
		{[]string{"P", "AE1", "S", "AH0", "JH"}, []string{"JHAH0", "JHAH0SAE1"}},
		{[]string{"HH", "M"}, nil},
	}
	for _, tt := range tests {
		if got := CandidateKeys(tt.phones); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CandidateKeys(%v) = %v, want %v", tt.phones, got, tt.want)
		}
	}
}

func TestParseCMUClassic(t *testing.T) {
	input := `;;; # CMUdict  --  Major Version: 0.07
;;; comment line
CAT  K AE1 T
HOUSE  HH AW1 S
HOUSE(2)  HH AW1 Z

READ(2)  R EH1 D
READ  R IY1 D
`
	d, stats, err := ParseCMU(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCMU: %v", err)
	}

	if stats.CommentLines != 2 {
		t.Errorf("CommentLines = %d, want 2", stats.CommentLines)
	}
	if stats.ParsedLines != 5 {
		t.Errorf("ParsedLines = %d, want 5", stats.ParsedLines)
	}
	if stats.UniqueWords != 3 {
		t.Errorf("UniqueWords = %d, want 3", stats.UniqueWords)
	}

	house := d.PhonemesFor("House")
	if len(house) != 2 {
		t.Fatalf("expected 2 pronunciations for house, got %d", len(house))
	}
	if house[1][2] != "Z" {
		t.Errorf("variant order wrong: %v", house)
	}

	read := d.PhonemesFor("read")
	if len(read) != 2 || read[0][1] != "IY1" {
		t.Errorf("primary pronunciation should come first regardless of file order: %v", read)
	}
}

func TestParseCMUDictLayout(t *testing.T) {
	input := "abandon ah0 b ae1 n d ah0 n\nabate ah0 b ey1 t # comment\nd'artagnan d ah0 t ae1 ng y ah0 n # place, french\n"
	d, _, err := ParseCMU(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCMU: %v", err)
	}

	got := Primary(d, "abate")
	want := []string{"AH0", "B", "EY1", "T"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Primary(abate) = %v, want %v", got, want)
	}
	if Primary(d, "d'artagnan") == nil {
		t.Error("expected apostrophe word to be parsed")
	}
}

func TestPrimaryUnknown(t *testing.T) {
	d := NewDict(map[string][][]string{"Cat": {{"K", "AE1", "T"}}})
	if Primary(d, "dog") != nil {
		t.Error("unknown word should have no transcription")
	}
	if Primary(d, "cat") == nil {
		t.Error("NewDict should lowercase keys")
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
}
