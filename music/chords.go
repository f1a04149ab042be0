package music

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
)

var chordFormulas = map[string][]models.Interval{
	"maj":  {models.IntervalRoot, models.IntervalMajorThird, models.IntervalFifth},
	"m":    {models.IntervalRoot, models.IntervalMinorThird, models.IntervalFifth},
	"dim":  {models.IntervalRoot, models.IntervalMinorThird, models.IntervalFlatFifth},
	"aug":  {models.IntervalRoot, models.IntervalMajorThird, models.IntervalSharpFifth},
	"sus2": {models.IntervalRoot, models.IntervalMajorSecond, models.IntervalFifth},
	"sus4": {models.IntervalRoot, models.IntervalFourth, models.IntervalFifth},
	"7":    {models.IntervalRoot, models.IntervalMajorThird, models.IntervalFifth, models.IntervalMinorSeventh},
	"m7":   {models.IntervalRoot, models.IntervalMinorThird, models.IntervalFifth, models.IntervalMinorSeventh},
	"maj7": {models.IntervalRoot, models.IntervalMajorThird, models.IntervalFifth, models.IntervalMajorSeventh},
}

// ChordFormula returns the chord tones of a quality ("maj", "m", "7", "m7", "maj7",
// "dim", "aug", "sus2", "sus4").
func ChordFormula(quality string) ([]models.Interval, error) {
	formula, ok := chordFormulas[strings.TrimSpace(quality)]
	if !ok {
		return nil, fmt.Errorf("unknown chord quality: %s", quality)
	}
	return append([]models.Interval(nil), formula...), nil
}

// ChordNotes spells a chord from its root and quality
func ChordNotes(root models.NoteName, quality string) ([]models.NoteName, error) {
	formula, err := ChordFormula(quality)
	if err != nil {
		return nil, err
	}
	notes := make([]models.NoteName, len(formula))
	for i, interval := range formula {
		notes[i] = Transpose(root, models.IntervalSemitones[interval])
	}
	return notes, nil
}
