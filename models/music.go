package models

import "strings"

// NoteName is one of the 17 enharmonic spellings of the 12 pitch classes
type NoteName string

const (
	NoteC      NoteName = "C"
	NoteCSharp NoteName = "C#"
	NoteDb     NoteName = "Db"
	NoteD      NoteName = "D"
	NoteDSharp NoteName = "D#"
	NoteEb     NoteName = "Eb"
	NoteE      NoteName = "E"
	NoteF      NoteName = "F"
	NoteFSharp NoteName = "F#"
	NoteGb     NoteName = "Gb"
	NoteG      NoteName = "G"
	NoteGSharp NoteName = "G#"
	NoteAb     NoteName = "Ab"
	NoteA      NoteName = "A"
	NoteASharp NoteName = "A#"
	NoteBb     NoteName = "Bb"
	NoteB      NoteName = "B"
)

// AllNoteNames lists every accepted spelling in chromatic order
var AllNoteNames = []NoteName{
	NoteC, NoteCSharp, NoteDb, NoteD, NoteDSharp, NoteEb, NoteE, NoteF,
	NoteFSharp, NoteGb, NoteG, NoteGSharp, NoteAb, NoteA, NoteASharp, NoteBb, NoteB,
}

// PitchClasses maps every spelling to its chromatic index (C = 0)
var PitchClasses = map[NoteName]int{
	NoteC: 0, NoteCSharp: 1, NoteDb: 1, NoteD: 2, NoteDSharp: 3, NoteEb: 3,
	NoteE: 4, NoteF: 5, NoteFSharp: 6, NoteGb: 6, NoteG: 7, NoteGSharp: 8,
	NoteAb: 8, NoteA: 9, NoteASharp: 10, NoteBb: 10, NoteB: 11,
}

// ChromaticNotes are the canonical (sharp-preferred) spellings indexed by pitch class
var ChromaticNotes = [12]NoteName{
	NoteC, NoteCSharp, NoteD, NoteDSharp, NoteE, NoteF,
	NoteFSharp, NoteG, NoteGSharp, NoteA, NoteASharp, NoteB,
}

// IsValidNoteName reports whether n is one of the 17 accepted spellings
func IsValidNoteName(n string) bool {
	_, ok := PitchClasses[NoteName(n)]
	return ok
}

// ParseNoteName normalizes the letter case of a note ("bb" -> "Bb", "f#" -> "F#")
// and reports whether the result is a known spelling.
func ParseNoteName(s string) (NoteName, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	normalized := strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	if !IsValidNoteName(normalized) {
		return "", false
	}
	return NoteName(normalized), true
}

// Interval is a scale-degree label relative to a root
type Interval string

const (
	IntervalRoot         Interval = "R"
	IntervalMinorSecond  Interval = "b2"
	IntervalMajorSecond  Interval = "2"
	IntervalMinorThird   Interval = "b3"
	IntervalMajorThird   Interval = "3"
	IntervalFourth       Interval = "4"
	IntervalSharpFourth  Interval = "#4"
	IntervalFlatFifth    Interval = "b5"
	IntervalFifth        Interval = "5"
	IntervalSharpFifth   Interval = "#5"
	IntervalMinorSixth   Interval = "b6"
	IntervalMajorSixth   Interval = "6"
	IntervalMinorSeventh Interval = "b7"
	IntervalMajorSeventh Interval = "7"
)

// IntervalSemitones binds each interval label to its semitone offset from the root.
// b5/#4 and #5/b6 share offsets; which label applies depends on the formula in use.
var IntervalSemitones = map[Interval]int{
	IntervalRoot:         0,
	IntervalMinorSecond:  1,
	IntervalMajorSecond:  2,
	IntervalMinorThird:   3,
	IntervalMajorThird:   4,
	IntervalFourth:       5,
	IntervalSharpFourth:  6,
	IntervalFlatFifth:    6,
	IntervalFifth:        7,
	IntervalSharpFifth:   8,
	IntervalMinorSixth:   8,
	IntervalMajorSixth:   9,
	IntervalMinorSeventh: 10,
	IntervalMajorSeventh: 11,
}

// IsValidInterval reports whether i is a known interval label
func IsValidInterval(i string) bool {
	_, ok := IntervalSemitones[Interval(i)]
	return ok
}

// StandardTuning holds the open-string notes for strings 1 (high E) through 6 (low E)
var StandardTuning = [6]NoteName{NoteE, NoteB, NoteG, NoteD, NoteA, NoteE}

// StandardTuningNames returns StandardTuning as a slice of plain strings for diagram metadata
func StandardTuningNames() []string {
	names := make([]string, len(StandardTuning))
	for i, n := range StandardTuning {
		names[i] = string(n)
	}
	return names
}

// GuitarPosition is a (string, fret) pair. String 1 is the highest pitched string,
// fret 0 is the open string.
type GuitarPosition struct {
	String int `json:"string"`
	Fret   int `json:"fret"`
}
