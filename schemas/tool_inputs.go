package schemas

import (
	"encoding/json"
	"errors"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/music"
)

// PositionInput is an unvalidated (string, fret) pair
type PositionInput struct {
	String *int `json:"string" validate:"required,min=1,max=6"`
	Fret   *int `json:"fret" validate:"required,min=0,max=24"`
}

func (p PositionInput) toModel() models.GuitarPosition {
	return models.GuitarPosition{String: *p.String, Fret: *p.Fret}
}

// ChordNoteInput is one chord position as supplied by the model
type ChordNoteInput struct {
	Position *PositionInput `json:"position" validate:"required"`
	Interval string         `json:"interval" validate:"required,interval"`
	Note     string         `json:"note" validate:"required,notename"`
}

// ChordMetadataInput is optional chord metadata
type ChordMetadataInput struct {
	Name   string   `json:"name"`
	Tuning []string `json:"tuning" validate:"omitempty,len=6"`
}

// ChordDiagramInput is the create_chord_diagram payload
type ChordDiagramInput struct {
	ID           string              `json:"id"`
	Root         string              `json:"root" validate:"required,notename"`
	Quality      string              `json:"quality" validate:"required"`
	Positions    []ChordNoteInput    `json:"positions" validate:"required,min=1,max=10,dive"`
	BaseFret     *int                `json:"baseFret" validate:"omitempty,min=1,max=24"`
	MutedStrings []int               `json:"mutedStrings" validate:"omitempty,dive,min=1,max=6"`
	Metadata     *ChordMetadataInput `json:"metadata"`
}

// FretboardRangeInput is an unvalidated fret window; toFret must not be below fromFret
type FretboardRangeInput struct {
	FromFret *int `json:"fromFret" validate:"required,min=0,max=24"`
	ToFret   *int `json:"toFret" validate:"required,min=0,max=24"`
}

// FretboardNoteInput is one fretboard note as supplied by the model
type FretboardNoteInput struct {
	Position *PositionInput `json:"position" validate:"required"`
	Interval string         `json:"interval" validate:"required,interval"`
	Note     string         `json:"note" validate:"required,notename"`
	IsRoot   bool           `json:"isRoot"`
}

// FretboardMetadataInput is optional fretboard metadata
type FretboardMetadataInput struct {
	Tuning       []string `json:"tuning" validate:"omitempty,len=6"`
	ScaleFormula []string `json:"scaleFormula" validate:"omitempty,dive,interval"`
}

// FretboardDiagramInput is the create_fretboard_diagram payload
type FretboardDiagramInput struct {
	ID       string                  `json:"id"`
	Root     string                  `json:"root" validate:"required,notename"`
	Label    string                  `json:"label"`
	Range    *FretboardRangeInput    `json:"range" validate:"required"`
	Notes    []FretboardNoteInput    `json:"notes" validate:"required,min=1,dive"`
	Metadata *FretboardMetadataInput `json:"metadata"`
}

// TextBlockInput is the add_text_block payload
type TextBlockInput struct {
	Content string `json:"content" validate:"required"`
}

// VideoEmbedInput is the embed_video payload
type VideoEmbedInput struct {
	VideoID          string `json:"videoId" validate:"required"`
	StartTimeSeconds *int   `json:"startTimeSeconds" validate:"omitempty,min=0"`
}

// VoicingLookupInput is the lookup_chord_voicing payload
type VoicingLookupInput struct {
	Root         string `json:"root" validate:"required"`
	Quality      string `json:"quality" validate:"required"`
	VoicingIndex *int   `json:"voicingIndex" validate:"omitempty,min=0"`
}

// ScaleDiagramInput is the generate_scale_diagram payload
type ScaleDiagramInput struct {
	Root     string `json:"root" validate:"required,notename"`
	Scale    string `json:"scale" validate:"required,oneof=major minor_pentatonic major_pentatonic blues"`
	FromFret *int   `json:"fromFret" validate:"omitempty,min=0,max=24"`
	ToFret   *int   `json:"toFret" validate:"omitempty,min=0,max=24"`
}

// ShellVoicingInput is the generate_shell_voicing payload
type ShellVoicingInput struct {
	Root      string `json:"root" validate:"required,notename"`
	Quality   string `json:"quality" validate:"required,oneof=m7 7 maj7"`
	StringSet string `json:"stringSet" validate:"required,oneof=low middle high"`
}

// Default window for generated scale diagrams when the model gives none
const (
	DefaultScaleFromFret = 0
	DefaultScaleToFret   = 12
)

// DecodeChordDiagram validates a create_chord_diagram payload
func DecodeChordDiagram(raw json.RawMessage) (models.ChordDiagramData, error) {
	in, err := decode[ChordDiagramInput](raw)
	if err != nil {
		return models.ChordDiagramData{}, err
	}

	data := models.ChordDiagramData{
		ID:           in.ID,
		Root:         models.NoteName(in.Root),
		Quality:      in.Quality,
		Positions:    make([]models.ChordNote, len(in.Positions)),
		MutedStrings: in.MutedStrings,
	}
	for i, p := range in.Positions {
		data.Positions[i] = models.ChordNote{
			Position: p.Position.toModel(),
			Interval: models.Interval(p.Interval),
			Note:     models.NoteName(p.Note),
		}
	}
	if in.BaseFret != nil {
		data.BaseFret = *in.BaseFret
	}
	if in.Metadata != nil {
		data.Metadata = &models.ChordMetadata{Name: in.Metadata.Name, Tuning: in.Metadata.Tuning}
	}
	return data, nil
}

// DecodeFretboardDiagram validates a create_fretboard_diagram payload
func DecodeFretboardDiagram(raw json.RawMessage) (models.FretboardDiagramData, error) {
	in, err := decode[FretboardDiagramInput](raw)
	if err != nil {
		return models.FretboardDiagramData{}, err
	}

	data := models.FretboardDiagramData{
		ID:    in.ID,
		Root:  models.NoteName(in.Root),
		Label: in.Label,
		Range: models.FretboardRange{FromFret: *in.Range.FromFret, ToFret: *in.Range.ToFret},
		Notes: make([]models.FretboardNote, len(in.Notes)),
	}
	for i, n := range in.Notes {
		data.Notes[i] = models.FretboardNote{
			Position: n.Position.toModel(),
			Interval: models.Interval(n.Interval),
			Note:     models.NoteName(n.Note),
			IsRoot:   n.IsRoot,
		}
	}
	if in.Metadata != nil {
		meta := &models.FretboardMetadata{Tuning: in.Metadata.Tuning}
		for _, interval := range in.Metadata.ScaleFormula {
			meta.ScaleFormula = append(meta.ScaleFormula, models.Interval(interval))
		}
		data.Metadata = meta
	}
	return data, nil
}

// DecodeTextBlock validates an add_text_block payload
func DecodeTextBlock(raw json.RawMessage) (TextBlockInput, error) {
	return decode[TextBlockInput](raw)
}

// DecodeVideoEmbed validates an embed_video payload
func DecodeVideoEmbed(raw json.RawMessage) (VideoEmbedInput, error) {
	return decode[VideoEmbedInput](raw)
}

// DecodeVoicingLookup validates a lookup_chord_voicing payload
func DecodeVoicingLookup(raw json.RawMessage) (VoicingLookupInput, error) {
	return decode[VoicingLookupInput](raw)
}

// DecodeScaleDiagram validates a generate_scale_diagram payload and fills in the default window
func DecodeScaleDiagram(raw json.RawMessage) (models.NoteName, music.ScaleType, models.FretboardRange, error) {
	in, err := decode[ScaleDiagramInput](raw)
	if err != nil {
		return "", "", models.FretboardRange{}, err
	}
	fretRange := models.FretboardRange{FromFret: DefaultScaleFromFret, ToFret: DefaultScaleToFret}
	if in.FromFret != nil {
		fretRange.FromFret = *in.FromFret
	}
	if in.ToFret != nil {
		fretRange.ToFret = *in.ToFret
	}
	if fretRange.ToFret < fretRange.FromFret {
		return "", "", models.FretboardRange{}, errors.New("toFret must be >= fromFret")
	}
	return models.NoteName(in.Root), music.ScaleType(in.Scale), fretRange, nil
}

// DecodeShellVoicing validates a generate_shell_voicing payload
func DecodeShellVoicing(raw json.RawMessage) (ShellVoicingInput, error) {
	return decode[ShellVoicingInput](raw)
}
