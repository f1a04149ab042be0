package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/music"
	"github.com/Conceptual-Machines/lesson-agents-go/reference"
	"github.com/Conceptual-Machines/lesson-agents-go/schemas"
	"github.com/google/uuid"
)

// ToolCall is one completed tool invocation from the model
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult is the outcome of a tool call. Block is set for block-producing tools,
// Data for lookups, Error when Success is false.
type ToolResult struct {
	Success bool               `json:"success"`
	Block   models.LessonBlock `json:"block,omitempty"`
	Data    any                `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func failure(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// ToolExecutor turns tool calls into validated blocks or lookup data
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) ToolResult
}

// LessonToolExecutor is the ToolExecutor for lesson tools. It holds no mutable state;
// every call only reads the reference store and mints an id and timestamp.
type LessonToolExecutor struct {
	now   func() time.Time
	newID func() string
}

// ExecutorOption customizes a LessonToolExecutor
type ExecutorOption func(*LessonToolExecutor)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *LessonToolExecutor) {
		e.now = now
	}
}

// WithIDGenerator overrides the block id source
func WithIDGenerator(newID func() string) ExecutorOption {
	return func(e *LessonToolExecutor) {
		e.newID = newID
	}
}

// NewLessonToolExecutor creates an executor using UUIDs and the wall clock
func NewLessonToolExecutor(opts ...ExecutorOption) *LessonToolExecutor {
	e := &LessonToolExecutor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseToolInput checks the accumulated argument string of a tool call.
// An empty string is treated as an empty object.
func ParseToolInput(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return json.RawMessage("{}"), nil
	}
	var probe any
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return nil, err
	}
	return json.RawMessage(trimmed), nil
}

// parseFailure is the result reported for a tool call whose arguments are not JSON
func parseFailure(err error) ToolResult {
	return failure("Failed to parse tool input: %v", err)
}

// Execute runs one tool call. Every failure is reported in the result, never as a panic or error.
func (e *LessonToolExecutor) Execute(ctx context.Context, call ToolCall) ToolResult {
	switch call.Name {
	case ToolCreateChordDiagram:
		return e.createChordDiagram(call.Input)
	case ToolCreateFretboardDiagram:
		return e.createFretboardDiagram(call.Input)
	case ToolAddTextBlock:
		return e.addTextBlock(call.Input)
	case ToolEmbedVideo:
		return e.embedVideo(call.Input)
	case ToolLookupChordVoicing:
		return e.lookupChordVoicing(call.Input)
	case ToolGenerateScaleDiagram:
		return e.generateScaleDiagram(call.Input)
	case ToolGenerateShellVoicing:
		return e.generateShellVoicing(call.Input)
	default:
		return failure("Unknown tool: %s", call.Name)
	}
}

// ExecuteAll runs a batch of calls in order
func (e *LessonToolExecutor) ExecuteAll(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, e.Execute(ctx, call))
	}
	return results
}

func (e *LessonToolExecutor) chordBlock(data models.ChordDiagramData) ToolResult {
	if data.ID == "" {
		data.ID = e.newID()
	}
	block := models.NewChordDiagramBlock(e.newID(), models.AuthorAI, e.now(), data)
	block.Animate = true
	block.ShowIntervals = true
	return ToolResult{Success: true, Block: block}
}

func (e *LessonToolExecutor) fretboardBlock(data models.FretboardDiagramData) ToolResult {
	if data.ID == "" {
		data.ID = e.newID()
	}
	block := models.NewFretboardDiagramBlock(e.newID(), models.AuthorAI, e.now(), data)
	block.HighlightRoots = true
	return ToolResult{Success: true, Block: block}
}

func (e *LessonToolExecutor) createChordDiagram(input json.RawMessage) ToolResult {
	data, err := schemas.DecodeChordDiagram(input)
	if err != nil {
		return failure("Invalid chord diagram data: %v", err)
	}
	return e.chordBlock(data)
}

func (e *LessonToolExecutor) createFretboardDiagram(input json.RawMessage) ToolResult {
	data, err := schemas.DecodeFretboardDiagram(input)
	if err != nil {
		return failure("Invalid fretboard diagram data: %v", err)
	}
	return e.fretboardBlock(data)
}

func (e *LessonToolExecutor) addTextBlock(input json.RawMessage) ToolResult {
	in, err := schemas.DecodeTextBlock(input)
	if err != nil {
		return failure("Invalid text block data: %v", err)
	}
	return ToolResult{Success: true, Block: models.NewTextBlock(e.newID(), models.AuthorAI, e.now(), in.Content)}
}

func (e *LessonToolExecutor) embedVideo(input json.RawMessage) ToolResult {
	in, err := schemas.DecodeVideoEmbed(input)
	if err != nil {
		return failure("Invalid video embed data: %v", err)
	}
	block := models.NewVideoEmbedBlock(e.newID(), models.AuthorAI, e.now(), in.VideoID, in.StartTimeSeconds)
	return ToolResult{Success: true, Block: block}
}

// VoicingSummary is one entry of a lookup listing
type VoicingSummary struct {
	Index        int                `json:"index"`
	Name         string             `json:"name"`
	BaseFret     int                `json:"baseFret"`
	Positions    []models.ChordNote `json:"positions"`
	MutedStrings []int              `json:"mutedStrings"`
}

// VoicingListing is returned by lookup_chord_voicing when no voicingIndex is given
type VoicingListing struct {
	Root     string           `json:"root"`
	Quality  string           `json:"quality"`
	Voicings []VoicingSummary `json:"voicings"`
}

func (e *LessonToolExecutor) lookupChordVoicing(input json.RawMessage) ToolResult {
	in, err := schemas.DecodeVoicingLookup(input)
	if err != nil {
		return failure("Invalid voicing lookup: %v", err)
	}

	voicings := reference.LookupVoicings(in.Root, in.Quality)
	if len(voicings) == 0 {
		return failure("No voicings found for %s %s", in.Root, in.Quality)
	}

	if in.VoicingIndex != nil {
		voicing, ok := reference.GetVoicing(in.Root, in.Quality, *in.VoicingIndex)
		if !ok {
			return failure("Voicing index %d out of range for %s %s (%d available)",
				*in.VoicingIndex, in.Root, in.Quality, len(voicings))
		}
		return ToolResult{Success: true, Data: voicing}
	}

	listing := VoicingListing{
		Root:     in.Root,
		Quality:  in.Quality,
		Voicings: make([]VoicingSummary, len(voicings)),
	}
	for i, v := range voicings {
		listing.Voicings[i] = VoicingSummary{
			Index:        i,
			Name:         v.Name,
			BaseFret:     v.BaseFret,
			Positions:    v.Positions,
			MutedStrings: v.MutedStrings,
		}
	}
	return ToolResult{Success: true, Data: listing}
}

func (e *LessonToolExecutor) generateScaleDiagram(input json.RawMessage) ToolResult {
	root, scale, fretRange, err := schemas.DecodeScaleDiagram(input)
	if err != nil {
		return failure("Invalid scale diagram request: %v", err)
	}
	data, err := music.GenerateScaleDiagram(root, scale, fretRange)
	if err != nil {
		return failure("Invalid scale diagram request: %v", err)
	}
	return e.fretboardBlock(data)
}

func (e *LessonToolExecutor) generateShellVoicing(input json.RawMessage) ToolResult {
	in, err := schemas.DecodeShellVoicing(input)
	if err != nil {
		return failure("Invalid shell voicing request: %v", err)
	}
	data, err := music.GenerateShellVoicing(models.NoteName(in.Root), in.Quality, music.StringSet(in.StringSet))
	if err != nil {
		return failure("Invalid shell voicing request: %v", err)
	}
	return e.chordBlock(data)
}
