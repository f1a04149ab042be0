package lesson

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Conceptual-Machines/lesson-agents-go/llm"
	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/music"
	"github.com/Conceptual-Machines/lesson-agents-go/schemas"
)

// Tool names exposed to the model. These are a stable contract with stored transcripts.
const (
	ToolLookupChordVoicing     = "lookup_chord_voicing"
	ToolCreateChordDiagram     = "create_chord_diagram"
	ToolCreateFretboardDiagram = "create_fretboard_diagram"
	ToolAddTextBlock           = "add_text_block"
	ToolEmbedVideo             = "embed_video"
	ToolGenerateScaleDiagram   = "generate_scale_diagram"
	ToolGenerateShellVoicing   = "generate_shell_voicing"
)

func noteNameEnum() []string {
	out := make([]string, len(models.AllNoteNames))
	for i, n := range models.AllNoteNames {
		out[i] = string(n)
	}
	return out
}

// intervalEnum lists every label the validator accepts, ordered by semitone offset
func intervalEnum() []string {
	labels := make([]models.Interval, 0, len(models.IntervalSemitones))
	for interval := range models.IntervalSemitones {
		labels = append(labels, interval)
	}
	slices.SortFunc(labels, func(a, b models.Interval) int {
		if c := cmp.Compare(models.IntervalSemitones[a], models.IntervalSemitones[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	out := make([]string, len(labels))
	for i, interval := range labels {
		out[i] = string(interval)
	}
	return out
}

func positionSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"string", "fret"},
		"properties": map[string]any{
			"string": map[string]any{"type": "integer", "minimum": models.MinString, "maximum": models.MaxString},
			"fret":   map[string]any{"type": "integer", "minimum": 0, "maximum": models.MaxFret},
		},
	}
}

func noteSchema(withRoot bool) map[string]any {
	properties := map[string]any{
		"position": positionSchema(),
		"interval": map[string]any{"type": "string", "enum": intervalEnum()},
		"note":     map[string]any{"type": "string", "enum": noteNameEnum()},
	}
	if withRoot {
		properties["isRoot"] = map[string]any{
			"type":        "boolean",
			"description": "Whether this note is a root note",
		}
	}
	return map[string]any{
		"type":       "object",
		"required":   []string{"position", "interval", "note"},
		"properties": properties,
	}
}

func tuningSchema() map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"minItems":    6,
		"maxItems":    6,
		"description": "Tuning for each string (default: standard)",
	}
}

// ToolDefinitions returns every tool the lesson agent may call
func ToolDefinitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name: ToolLookupChordVoicing,
			Description: "Look up reference chord voicings from the database. Use this BEFORE creating a chord " +
				"diagram to get correct fret positions. Returns voicing data with positions, baseFret, and " +
				"mutedStrings that can be used directly with create_chord_diagram.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"root", "quality"},
				"properties": map[string]any{
					"root": map[string]any{
						"type":        "string",
						"enum":        noteNameEnum(),
						"description": "Root note of the chord",
					},
					"quality": map[string]any{
						"type":        "string",
						"description": "Chord quality: 'maj' for major, 'm' for minor, 'maj7', 'm7', '7' for seventh chords",
					},
					"voicingIndex": map[string]any{
						"type":        "integer",
						"minimum":     0,
						"description": "Optional: index of specific voicing to retrieve (0 = first/most common voicing)",
					},
				},
			},
		},
		{
			Name: ToolCreateChordDiagram,
			Description: "Create a single concrete guitar chord diagram (one voicing). Use for shell voicings, " +
				"drop voicings, triads, and partial grips.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"root", "quality", "positions"},
				"properties": map[string]any{
					"root": map[string]any{"type": "string", "enum": noteNameEnum()},
					"quality": map[string]any{
						"type":        "string",
						"description": "Chord quality (e.g. m7, 7, maj7, dim7, aug)",
					},
					"positions": map[string]any{
						"type":     "array",
						"minItems": 1,
						"maxItems": models.MaxChordNotes,
						"items":    noteSchema(false),
					},
					"baseFret": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"maximum":     models.MaxFret,
						"description": "Starting fret for higher-position shapes",
					},
					"mutedStrings": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "integer", "minimum": models.MinString, "maximum": models.MaxString},
						"description": "Strings that are muted (not played)",
					},
					"metadata": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":   map[string]any{"type": "string", "description": "Display name for the chord"},
							"tuning": tuningSchema(),
						},
					},
				},
			},
		},
		{
			Name: ToolCreateFretboardDiagram,
			Description: "Create a fretboard diagram showing note positions over a range. Use for scales, " +
				"arpeggios, and chord tones.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"root", "range", "notes"},
				"properties": map[string]any{
					"root": map[string]any{"type": "string", "enum": noteNameEnum()},
					"label": map[string]any{
						"type":        "string",
						"description": "Optional display label (e.g. 'C Minor Pentatonic')",
					},
					"range": map[string]any{
						"type":     "object",
						"required": []string{"fromFret", "toFret"},
						"properties": map[string]any{
							"fromFret": map[string]any{"type": "integer", "minimum": 0, "maximum": models.MaxFret},
							"toFret":   map[string]any{"type": "integer", "minimum": 0, "maximum": models.MaxFret},
						},
					},
					"notes": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items":    noteSchema(true),
					},
					"metadata": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"tuning": tuningSchema(),
							"scaleFormula": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string", "enum": intervalEnum()},
							},
						},
					},
				},
			},
		},
		{
			Name:        ToolAddTextBlock,
			Description: "Add an explanatory text block to the lesson. Use markdown formatting.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"content"},
				"properties": map[string]any{
					"content": map[string]any{
						"type":        "string",
						"description": "Markdown content for the text block",
					},
				},
			},
		},
		{
			Name:        ToolEmbedVideo,
			Description: "Embed a YouTube video in the lesson.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"videoId"},
				"properties": map[string]any{
					"videoId": map[string]any{
						"type":        "string",
						"description": "YouTube video ID (e.g. 'dQw4w9WgXcQ')",
					},
					"startTimeSeconds": map[string]any{
						"type":        "integer",
						"minimum":     0,
						"description": "Optional start time in seconds",
					},
				},
			},
		},
		{
			Name: ToolGenerateScaleDiagram,
			Description: "Generate a fretboard diagram for a standard scale. Every note of the scale within the " +
				"fret range is computed for you, with roots flagged.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"root", "scale"},
				"properties": map[string]any{
					"root": map[string]any{"type": "string", "enum": noteNameEnum()},
					"scale": map[string]any{
						"type": "string",
						"enum": []string{
							string(music.ScaleMajor), string(music.ScaleMinorPentatonic),
							string(music.ScaleMajorPentatonic), string(music.ScaleBlues),
						},
					},
					"fromFret": map[string]any{
						"type":        "integer",
						"minimum":     0,
						"maximum":     models.MaxFret,
						"description": fmt.Sprintf("First fret of the window (default %d)", schemas.DefaultScaleFromFret),
					},
					"toFret": map[string]any{
						"type":        "integer",
						"minimum":     0,
						"maximum":     models.MaxFret,
						"description": fmt.Sprintf("Last fret of the window (default %d)", schemas.DefaultScaleToFret),
					},
				},
			},
		},
		{
			Name: ToolGenerateShellVoicing,
			Description: "Generate a three-note shell voicing (root, 3rd, 7th) for a seventh chord on a chosen " +
				"string set.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"root", "quality", "stringSet"},
				"properties": map[string]any{
					"root":    map[string]any{"type": "string", "enum": noteNameEnum()},
					"quality": map[string]any{"type": "string", "enum": []string{"m7", "7", "maj7"}},
					"stringSet": map[string]any{
						"type":        "string",
						"enum":        []string{string(music.StringSetLow), string(music.StringSetMiddle), string(music.StringSetHigh)},
						"description": "low = strings 6,4,3; middle = strings 5,3,2; high = strings 4,2,1",
					},
				},
			},
		},
	}
}
