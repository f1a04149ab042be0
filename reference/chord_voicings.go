// Package reference serves verified guitar chord voicings so diagrams never depend on
// fret numbers invented by the model.
package reference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/music"
)

// RawVoicing is one table entry: a six-character fret pattern, an optional barre fret and a shape name
type RawVoicing struct {
	Frets string
	Barre int
	Name  string
}

// Voicing is a table entry converted into diagram positions for a specific root
type Voicing struct {
	Root         models.NoteName    `json:"root"`
	Quality      string             `json:"quality"`
	Name         string             `json:"name"`
	Positions    []models.ChordNote `json:"positions"`
	BaseFret     int                `json:"baseFret"`
	MutedStrings []int              `json:"mutedStrings"`
}

var rootAliases = map[string]string{
	"A#": "Bb",
	"D#": "Eb",
	"G#": "Ab",
	"C#": "Db",
	"Gb": "F#",
}

var qualityAliases = map[string]string{
	"major":     "maj",
	"minor":     "m",
	"min":       "m",
	"dom7":      "7",
	"dominant7": "7",
}

// normalizeRoot upper-cases the letter ("bb" -> "Bb") and returns the table key for the root
func normalizeRoot(root string) (models.NoteName, string, bool) {
	note, ok := models.ParseNoteName(root)
	if !ok {
		return "", "", false
	}
	key := string(note)
	if alias, isAlias := rootAliases[key]; isAlias {
		key = alias
	}
	if _, exists := voicingTable[key]; !exists {
		return "", "", false
	}
	return note, key, true
}

// NormalizeQuality lower-cases a quality and resolves aliases ("Major" -> "maj", "dom7" -> "7")
func NormalizeQuality(quality string) string {
	q := strings.ToLower(strings.TrimSpace(quality))
	if alias, ok := qualityAliases[q]; ok {
		return alias
	}
	return q
}

// ConvertVoicing turns a raw fret pattern into positions relative to root.
// Character 0 is string 6, character 5 is string 1.
func ConvertVoicing(root models.NoteName, raw RawVoicing) Voicing {
	v := Voicing{
		Root:         root,
		Name:         raw.Name,
		Positions:    make([]models.ChordNote, 0, 6),
		MutedStrings: []int{},
	}

	minFret := 0
	for i := 0; i < 6; i++ {
		guitarString := 6 - i
		fret := -1
		if i < len(raw.Frets) {
			fret = parseFretChar(raw.Frets[i])
		}
		if fret < 0 {
			v.MutedStrings = append(v.MutedStrings, guitarString)
			continue
		}

		note := music.NoteAt(guitarString, fret)
		v.Positions = append(v.Positions, models.ChordNote{
			Position: models.GuitarPosition{String: guitarString, Fret: fret},
			Interval: music.IntervalForSemitones(music.SemitoneDistance(root, note)),
			Note:     note,
		})
		if fret > 0 && (minFret == 0 || fret < minFret) {
			minFret = fret
		}
	}

	switch {
	case raw.Barre > 0:
		v.BaseFret = raw.Barre
	case minFret > 3:
		v.BaseFret = minFret
	default:
		v.BaseFret = 1
	}
	return v
}

// parseFretChar decodes x (muted, -1), 0-9 and a.. (10+)
func parseFretChar(c byte) int {
	switch {
	case c == 'x' || c == 'X':
		return -1
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	default:
		return -1
	}
}

// LookupVoicings returns every voicing for root and quality, or nil when either is unknown
func LookupVoicings(root, quality string) []Voicing {
	note, key, ok := normalizeRoot(root)
	if !ok {
		return nil
	}
	q := NormalizeQuality(quality)
	raws := voicingTable[key][q]
	if len(raws) == 0 {
		return nil
	}

	voicings := make([]Voicing, len(raws))
	for i, raw := range raws {
		voicings[i] = ConvertVoicing(note, raw)
		voicings[i].Quality = q
	}
	return voicings
}

// LookupSymbol resolves a chord symbol such as "Am7" and returns its voicings.
// The bass of a slash chord is ignored; voicings are stored by root position only.
func LookupSymbol(symbol string) (music.ChordSymbol, []Voicing, error) {
	parsed, err := music.ParseChordSymbol(symbol)
	if err != nil {
		return music.ChordSymbol{}, nil, err
	}
	voicings := LookupVoicings(string(parsed.Root), parsed.Quality)
	if len(voicings) == 0 {
		return parsed, nil, fmt.Errorf("no voicings found for %s", parsed)
	}
	return parsed, voicings, nil
}

// GetVoicing returns the voicing at index, or false when there is none
func GetVoicing(root, quality string, index int) (Voicing, bool) {
	voicings := LookupVoicings(root, quality)
	if index < 0 || index >= len(voicings) {
		return Voicing{}, false
	}
	return voicings[index], true
}

// AvailableQualities lists the qualities stored for a root, sorted
func AvailableQualities(root string) []string {
	_, key, ok := normalizeRoot(root)
	if !ok {
		return nil
	}
	qualities := make([]string, 0, len(voicingTable[key]))
	for q := range voicingTable[key] {
		qualities = append(qualities, q)
	}
	sort.Strings(qualities)
	return qualities
}

// AvailableRoots lists the canonical roots in chromatic order; enharmonic aliases are not repeated
func AvailableRoots() []string {
	roots := make([]string, 0, len(voicingTable))
	for root := range voicingTable {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool {
		return models.PitchClasses[models.NoteName(roots[i])] < models.PitchClasses[models.NoteName(roots[j])]
	})
	return roots
}

// ToChordDiagramData builds diagram data for the voicing under the given id
func (v Voicing) ToChordDiagramData(id string) models.ChordDiagramData {
	name := v.Name
	if name != "" {
		name = string(v.Root) + v.Quality + " " + name
	}
	return models.ChordDiagramData{
		ID:           id,
		Root:         v.Root,
		Quality:      v.Quality,
		Positions:    append([]models.ChordNote(nil), v.Positions...),
		BaseFret:     v.BaseFret,
		MutedStrings: append([]int(nil), v.MutedStrings...),
		Metadata: &models.ChordMetadata{
			Name:   name,
			Tuning: models.StandardTuningNames(),
		},
	}
}
