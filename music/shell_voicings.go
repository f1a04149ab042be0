package music

import (
	"fmt"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
)

// StringSet selects which three strings a shell voicing is played on
type StringSet string

const (
	StringSetLow    StringSet = "low"
	StringSetMiddle StringSet = "middle"
	StringSetHigh   StringSet = "high"
)

type shellVoice struct {
	guitarString int
	interval     models.Interval
}

// root string first, then the seventh and third strings
var shellStrings = map[StringSet][3]int{
	StringSetLow:    {6, 4, 3},
	StringSetMiddle: {5, 3, 2},
	StringSetHigh:   {4, 2, 1},
}

var shellTones = map[string][2]models.Interval{
	"m7":   {models.IntervalMinorSeventh, models.IntervalMinorThird},
	"7":    {models.IntervalMinorSeventh, models.IntervalMajorThird},
	"maj7": {models.IntervalMajorSeventh, models.IntervalMajorThird},
}

// GenerateShellVoicing builds a root/third/seventh voicing for m7, 7 or maj7 chords.
// The root sits at its lowest fret on the set's lowest string; the other voices take the
// fret closest to it. The returned data has no ID; callers assign one.
func GenerateShellVoicing(root models.NoteName, quality string, set StringSet) (models.ChordDiagramData, error) {
	tones, ok := shellTones[quality]
	if !ok {
		return models.ChordDiagramData{}, fmt.Errorf("shell voicings support m7, 7 and maj7, got %q", quality)
	}
	stringNums, ok := shellStrings[set]
	if !ok {
		return models.ChordDiagramData{}, fmt.Errorf("unknown string set: %s", set)
	}
	if _, ok := models.PitchClasses[root]; !ok {
		return models.ChordDiagramData{}, fmt.Errorf("unknown root note: %s", root)
	}

	voices := []shellVoice{
		{guitarString: stringNums[0], interval: models.IntervalRoot},
		{guitarString: stringNums[1], interval: tones[0]},
		{guitarString: stringNums[2], interval: tones[1]},
	}

	rootFret := FindNoteOnString(root, stringNums[0], 11)[0]
	positions := make([]models.ChordNote, 0, len(voices))
	used := map[int]bool{}
	for _, voice := range voices {
		note := Transpose(root, models.IntervalSemitones[voice.interval])
		fret := nearestFret(note, voice.guitarString, rootFret)
		positions = append(positions, models.ChordNote{
			Position: models.GuitarPosition{String: voice.guitarString, Fret: fret},
			Interval: voice.interval,
			Note:     note,
		})
		used[voice.guitarString] = true
	}

	var muted []int
	for s := models.MinString; s <= models.MaxString; s++ {
		if !used[s] {
			muted = append(muted, s)
		}
	}

	baseFret := 0
	for _, p := range positions {
		if p.Position.Fret > 0 && (baseFret == 0 || p.Position.Fret < baseFret) {
			baseFret = p.Position.Fret
		}
	}

	return models.ChordDiagramData{
		Root:         root,
		Quality:      quality,
		Positions:    positions,
		BaseFret:     baseFret,
		MutedStrings: muted,
		Metadata: &models.ChordMetadata{
			Name:   fmt.Sprintf("%s%s Shell (%s strings)", root, quality, set),
			Tuning: models.StandardTuningNames(),
		},
	}, nil
}

// nearestFret picks the fret of note on a string closest to anchor, preferring the higher fret on ties
func nearestFret(note models.NoteName, guitarString, anchor int) int {
	best := -1
	for _, fret := range FindNoteOnString(note, guitarString, models.MaxFret) {
		if best < 0 || absInt(fret-anchor) < absInt(best-anchor) ||
			(absInt(fret-anchor) == absInt(best-anchor) && fret > best) {
			best = fret
		}
	}
	return best
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
