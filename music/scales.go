package music

import (
	"fmt"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
)

// ScaleType names a supported scale
type ScaleType string

const (
	ScaleMajor           ScaleType = "major"
	ScaleMinorPentatonic ScaleType = "minor_pentatonic"
	ScaleMajorPentatonic ScaleType = "major_pentatonic"
	ScaleBlues           ScaleType = "blues"
)

// ScaleTypes lists the supported scales in presentation order
var ScaleTypes = []ScaleType{ScaleMajor, ScaleMinorPentatonic, ScaleMajorPentatonic, ScaleBlues}

// ScaleFormulas lists the intervals of each supported scale
var ScaleFormulas = map[ScaleType][]models.Interval{
	ScaleMajor: {
		models.IntervalRoot, models.IntervalMajorSecond, models.IntervalMajorThird, models.IntervalFourth,
		models.IntervalFifth, models.IntervalMajorSixth, models.IntervalMajorSeventh,
	},
	ScaleMinorPentatonic: {
		models.IntervalRoot, models.IntervalMinorThird, models.IntervalFourth,
		models.IntervalFifth, models.IntervalMinorSeventh,
	},
	ScaleMajorPentatonic: {
		models.IntervalRoot, models.IntervalMajorSecond, models.IntervalMajorThird,
		models.IntervalFifth, models.IntervalMajorSixth,
	},
	ScaleBlues: {
		models.IntervalRoot, models.IntervalMinorThird, models.IntervalFourth,
		models.IntervalSharpFourth, models.IntervalFifth, models.IntervalMinorSeventh,
	},
}

// ScaleLabels are the display names used in diagram labels
var ScaleLabels = map[ScaleType]string{
	ScaleMajor:           "Major Scale",
	ScaleMinorPentatonic: "Minor Pentatonic",
	ScaleMajorPentatonic: "Major Pentatonic",
	ScaleBlues:           "Blues Scale",
}

// GenerateScaleDiagram lays out every note of a scale within a fret range on all six strings.
// The returned data has no ID; callers assign one.
func GenerateScaleDiagram(root models.NoteName, scale ScaleType, fretRange models.FretboardRange) (models.FretboardDiagramData, error) {
	formula, ok := ScaleFormulas[scale]
	if !ok {
		return models.FretboardDiagramData{}, fmt.Errorf("unknown scale: %s", scale)
	}
	if _, ok := models.PitchClasses[root]; !ok {
		return models.FretboardDiagramData{}, fmt.Errorf("unknown root note: %s", root)
	}
	if fretRange.FromFret < 0 || fretRange.ToFret > models.MaxFret || fretRange.FromFret > fretRange.ToFret {
		return models.FretboardDiagramData{}, fmt.Errorf("invalid fret range %d-%d", fretRange.FromFret, fretRange.ToFret)
	}

	var notes []models.FretboardNote
	for guitarString := models.MinString; guitarString <= models.MaxString; guitarString++ {
		for fret := fretRange.FromFret; fret <= fretRange.ToFret; fret++ {
			note := NoteAt(guitarString, fret)
			interval, inScale := IntervalInScale(note, root, formula)
			if !inScale {
				continue
			}
			notes = append(notes, models.FretboardNote{
				Position: models.GuitarPosition{String: guitarString, Fret: fret},
				Interval: interval,
				Note:     note,
				IsRoot:   interval == models.IntervalRoot,
			})
		}
	}

	return models.FretboardDiagramData{
		Root:  root,
		Label: fmt.Sprintf("%s %s", root, ScaleLabels[scale]),
		Range: fretRange,
		Notes: notes,
		Metadata: &models.FretboardMetadata{
			Tuning:       models.StandardTuningNames(),
			ScaleFormula: append([]models.Interval(nil), formula...),
		},
	}, nil
}
