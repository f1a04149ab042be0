package music

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
)

// ChordSymbol is a parsed lead-sheet symbol such as "Am7", "F#maj7" or "Emin/G"
type ChordSymbol struct {
	Root    models.NoteName  `json:"root"`
	Quality string           `json:"quality"`
	Bass    *models.NoteName `json:"bass,omitempty"`
}

// qualitySuffixes maps the written suffix to a key of chordFormulas
var qualitySuffixes = map[string]string{
	"":      "maj",
	"M":     "maj",
	"maj":   "maj",
	"major": "maj",
	"m":     "m",
	"-":     "m",
	"min":   "m",
	"minor": "m",
	"7":     "7",
	"dom7":  "7",
	"m7":    "m7",
	"-7":    "m7",
	"min7":  "m7",
	"M7":    "maj7",
	"maj7":  "maj7",
	"Δ":     "maj7",
	"Δ7":    "maj7",
	"dim":   "dim",
	"°":     "dim",
	"aug":   "aug",
	"+":     "aug",
	"sus":   "sus4",
	"sus2":  "sus2",
	"sus4":  "sus4",
}

// splitRoot separates the root letter and accidental from the rest of the symbol
func splitRoot(symbol string) (models.NoteName, string, error) {
	if symbol == "" {
		return "", "", fmt.Errorf("empty chord symbol")
	}
	n := 1
	if len(symbol) > 1 && (symbol[1] == '#' || symbol[1] == 'b') {
		n = 2
	}
	root, ok := models.ParseNoteName(symbol[:n])
	if !ok {
		return "", "", fmt.Errorf("invalid root note: %s", symbol[:n])
	}
	return root, symbol[n:], nil
}

// ParseChordSymbol reads a chord symbol. A slash introduces a bass note.
func ParseChordSymbol(symbol string) (ChordSymbol, error) {
	symbol = strings.TrimSpace(symbol)
	chord, bassPart, hasBass := strings.Cut(symbol, "/")

	root, suffix, err := splitRoot(strings.TrimSpace(chord))
	if err != nil {
		return ChordSymbol{}, fmt.Errorf("invalid chord symbol %q: %w", symbol, err)
	}
	quality, ok := qualitySuffixes[strings.TrimSpace(suffix)]
	if !ok {
		return ChordSymbol{}, fmt.Errorf("invalid chord symbol %q: unsupported quality %q", symbol, suffix)
	}

	parsed := ChordSymbol{Root: root, Quality: quality}
	if hasBass {
		bass, ok := models.ParseNoteName(bassPart)
		if !ok {
			return ChordSymbol{}, fmt.Errorf("invalid chord symbol %q: invalid bass note %q", symbol, bassPart)
		}
		parsed.Bass = &bass
	}
	return parsed, nil
}

// Notes spells the chord. A bass note outside the chord is placed first.
func (c ChordSymbol) Notes() ([]models.NoteName, error) {
	notes, err := ChordNotes(c.Root, c.Quality)
	if err != nil {
		return nil, err
	}
	if c.Bass == nil {
		return notes, nil
	}
	for _, n := range notes {
		if NoteIndex(n) == NoteIndex(*c.Bass) {
			return notes, nil
		}
	}
	return append([]models.NoteName{*c.Bass}, notes...), nil
}

// String writes the symbol back in short form
func (c ChordSymbol) String() string {
	quality := c.Quality
	if quality == "maj" {
		quality = ""
	}
	s := string(c.Root) + quality
	if c.Bass != nil {
		s += "/" + string(*c.Bass)
	}
	return s
}
