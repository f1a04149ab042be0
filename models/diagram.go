package models

// Fretboard geometry bounds shared by validation and generators
const (
	MinString     = 1
	MaxString     = 6
	MaxFret       = 24
	MaxChordNotes = 10
)

// ChordNote is one sounded position of a chord diagram
type ChordNote struct {
	Position GuitarPosition `json:"position"`
	Interval Interval       `json:"interval"`
	Note     NoteName       `json:"note"`
}

// ChordMetadata carries optional display data for a chord diagram
type ChordMetadata struct {
	Name   string   `json:"name,omitempty"`
	Tuning []string `json:"tuning,omitempty"`
}

// ChordDiagramData describes a single chord voicing.
// Every position's note and interval must agree with Root; producers guarantee this.
type ChordDiagramData struct {
	ID           string         `json:"id"`
	Root         NoteName       `json:"root"`
	Quality      string         `json:"quality"`
	Positions    []ChordNote    `json:"positions"`
	BaseFret     int            `json:"baseFret,omitempty"`
	MutedStrings []int          `json:"mutedStrings,omitempty"`
	Metadata     *ChordMetadata `json:"metadata,omitempty"`
}

// FretboardRange is the inclusive window of frets a fretboard diagram shows
type FretboardRange struct {
	FromFret int `json:"fromFret"`
	ToFret   int `json:"toFret"`
}

// FretboardNote is one highlighted note on a fretboard diagram
type FretboardNote struct {
	Position GuitarPosition `json:"position"`
	Interval Interval       `json:"interval"`
	Note     NoteName       `json:"note"`
	IsRoot   bool           `json:"isRoot,omitempty"`
}

// FretboardMetadata carries optional display data for a fretboard diagram
type FretboardMetadata struct {
	Tuning       []string   `json:"tuning,omitempty"`
	ScaleFormula []Interval `json:"scaleFormula,omitempty"`
}

// FretboardDiagramData describes a scale or pattern laid out over a fret range
type FretboardDiagramData struct {
	ID       string             `json:"id"`
	Root     NoteName           `json:"root"`
	Label    string             `json:"label,omitempty"`
	Range    FretboardRange     `json:"range"`
	Notes    []FretboardNote    `json:"notes"`
	Metadata *FretboardMetadata `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the chord data
func (d ChordDiagramData) Clone() ChordDiagramData {
	out := d
	out.Positions = append([]ChordNote(nil), d.Positions...)
	out.MutedStrings = append([]int(nil), d.MutedStrings...)
	if d.Metadata != nil {
		meta := *d.Metadata
		meta.Tuning = append([]string(nil), d.Metadata.Tuning...)
		out.Metadata = &meta
	}
	return out
}

// Clone returns a deep copy of the fretboard data
func (d FretboardDiagramData) Clone() FretboardDiagramData {
	out := d
	out.Notes = append([]FretboardNote(nil), d.Notes...)
	if d.Metadata != nil {
		meta := *d.Metadata
		meta.Tuning = append([]string(nil), d.Metadata.Tuning...)
		meta.ScaleFormula = append([]Interval(nil), d.Metadata.ScaleFormula...)
		out.Metadata = &meta
	}
	return out
}
