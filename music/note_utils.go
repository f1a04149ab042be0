package music

import "github.com/Conceptual-Machines/lesson-agents-go/models"

// canonicalIntervals names each semitone offset the way voicing conversion labels it
var canonicalIntervals = [12]models.Interval{
	models.IntervalRoot,
	models.IntervalMinorSecond,
	models.IntervalMajorSecond,
	models.IntervalMinorThird,
	models.IntervalMajorThird,
	models.IntervalFourth,
	models.IntervalFlatFifth,
	models.IntervalFifth,
	models.IntervalSharpFifth,
	models.IntervalMajorSixth,
	models.IntervalMinorSeventh,
	models.IntervalMajorSeventh,
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}

// NoteIndex returns the chromatic index (0..11, C = 0) of a note, resolving enharmonics
func NoteIndex(note models.NoteName) int {
	return models.PitchClasses[note]
}

// NoteAt returns the canonical note sounded at a fret of a string in standard tuning.
// String 1 is high E, string 6 is low E.
func NoteAt(guitarString, fret int) models.NoteName {
	open := models.StandardTuning[guitarString-1]
	return models.ChromaticNotes[mod12(NoteIndex(open)+fret)]
}

// SemitoneDistance returns how many semitones note lies above root, in 0..11
func SemitoneDistance(root, note models.NoteName) int {
	return mod12(NoteIndex(note) - NoteIndex(root))
}

// IntervalInScale returns the formula interval matching note's distance from root.
// ok is false when the note is outside the formula.
func IntervalInScale(note, root models.NoteName, formula []models.Interval) (models.Interval, bool) {
	distance := SemitoneDistance(root, note)
	for _, interval := range formula {
		if models.IntervalSemitones[interval] == distance {
			return interval, true
		}
	}
	return "", false
}

// IntervalForSemitones returns the canonical interval label for a semitone offset
func IntervalForSemitones(semitones int) models.Interval {
	return canonicalIntervals[mod12(semitones)]
}

// Transpose shifts note by semitones (either direction) and returns the canonical spelling
func Transpose(note models.NoteName, semitones int) models.NoteName {
	return models.ChromaticNotes[mod12(NoteIndex(note)+semitones)]
}

// FindNoteOnString returns every fret in 0..maxFret where note sounds on the string
func FindNoteOnString(note models.NoteName, guitarString, maxFret int) []int {
	var frets []int
	target := NoteIndex(note)
	for fret := 0; fret <= maxFret; fret++ {
		if NoteIndex(NoteAt(guitarString, fret)) == target {
			frets = append(frets, fret)
		}
	}
	return frets
}
