package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// BlockType is the discriminant of a lesson block
type BlockType string

const (
	BlockTypeText             BlockType = "TextBlock"
	BlockTypeChordDiagram     BlockType = "ChordDiagram"
	BlockTypeFretboardDiagram BlockType = "FretboardDiagram"
	BlockTypeVideoEmbed       BlockType = "VideoEmbed"
)

// Author records who created a block
type Author string

const (
	AuthorAI   Author = "ai"
	AuthorUser Author = "user"
)

// VideoProviderYouTube is the only supported video host
const VideoProviderYouTube = "youtube"

// BlockMeta holds the fields shared by every block variant.
// ID, Type, CreatedBy and CreatedAt never change after creation.
type BlockMeta struct {
	ID        string    `json:"id"`
	Type      BlockType `json:"type"`
	CreatedBy Author    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Meta returns the common block fields
func (m BlockMeta) Meta() BlockMeta {
	return m
}

// LessonBlock is the closed set of block variants: TextBlock, ChordDiagramBlock,
// FretboardDiagramBlock and VideoEmbedBlock.
type LessonBlock interface {
	Meta() BlockMeta
	lessonBlock()
}

// TextBlock is a paragraph of lesson prose (markdown)
type TextBlock struct {
	BlockMeta
	Content string `json:"content"`
}

// ChordDiagramBlock renders a single chord voicing
type ChordDiagramBlock struct {
	BlockMeta
	Data          ChordDiagramData `json:"data"`
	Animate       bool             `json:"animate,omitempty"`
	ShowIntervals bool             `json:"showIntervals,omitempty"`
}

// FretboardDiagramBlock renders notes over a fret range
type FretboardDiagramBlock struct {
	BlockMeta
	Data           FretboardDiagramData `json:"data"`
	HighlightRoots bool                 `json:"highlightRoots,omitempty"`
}

// VideoRef points at an embedded video
type VideoRef struct {
	Provider         string `json:"provider"`
	VideoID          string `json:"videoId"`
	StartTimeSeconds *int   `json:"startTimeSeconds,omitempty"`
}

// VideoEmbedBlock embeds a YouTube video
type VideoEmbedBlock struct {
	BlockMeta
	Video VideoRef `json:"video"`
}

func (TextBlock) lessonBlock()             {}
func (ChordDiagramBlock) lessonBlock()     {}
func (FretboardDiagramBlock) lessonBlock() {}
func (VideoEmbedBlock) lessonBlock()       {}

// NewBlockMeta builds the common fields for a freshly created block
func NewBlockMeta(id string, blockType BlockType, createdBy Author, createdAt time.Time) BlockMeta {
	return BlockMeta{
		ID:        id,
		Type:      blockType,
		CreatedBy: createdBy,
		CreatedAt: createdAt.UTC(),
	}
}

// NewTextBlock builds a text block
func NewTextBlock(id string, createdBy Author, createdAt time.Time, content string) TextBlock {
	return TextBlock{BlockMeta: NewBlockMeta(id, BlockTypeText, createdBy, createdAt), Content: content}
}

// NewChordDiagramBlock builds a chord diagram block
func NewChordDiagramBlock(id string, createdBy Author, createdAt time.Time, data ChordDiagramData) ChordDiagramBlock {
	return ChordDiagramBlock{BlockMeta: NewBlockMeta(id, BlockTypeChordDiagram, createdBy, createdAt), Data: data}
}

// NewFretboardDiagramBlock builds a fretboard diagram block
func NewFretboardDiagramBlock(id string, createdBy Author, createdAt time.Time, data FretboardDiagramData) FretboardDiagramBlock {
	return FretboardDiagramBlock{BlockMeta: NewBlockMeta(id, BlockTypeFretboardDiagram, createdBy, createdAt), Data: data}
}

// NewVideoEmbedBlock builds a YouTube embed block
func NewVideoEmbedBlock(id string, createdBy Author, createdAt time.Time, videoID string, startTimeSeconds *int) VideoEmbedBlock {
	return VideoEmbedBlock{
		BlockMeta: NewBlockMeta(id, BlockTypeVideoEmbed, createdBy, createdAt),
		Video:     VideoRef{Provider: VideoProviderYouTube, VideoID: videoID, StartTimeSeconds: startTimeSeconds},
	}
}

// UnmarshalBlock decodes a JSON block, selecting the variant by its "type" field
func UnmarshalBlock(data []byte) (LessonBlock, error) {
	var probe struct {
		Type BlockType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode block: %w", err)
	}

	switch probe.Type {
	case BlockTypeText:
		var b TextBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", probe.Type, err)
		}
		return b, nil
	case BlockTypeChordDiagram:
		var b ChordDiagramBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", probe.Type, err)
		}
		return b, nil
	case BlockTypeFretboardDiagram:
		var b FretboardDiagramBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", probe.Type, err)
		}
		return b, nil
	case BlockTypeVideoEmbed:
		var b VideoEmbedBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", probe.Type, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown block type: %q", probe.Type)
	}
}

// CloneBlock returns a deep copy of b
func CloneBlock(b LessonBlock) LessonBlock {
	switch v := b.(type) {
	case TextBlock:
		return v
	case ChordDiagramBlock:
		v.Data = v.Data.Clone()
		return v
	case FretboardDiagramBlock:
		v.Data = v.Data.Clone()
		return v
	case VideoEmbedBlock:
		if v.Video.StartTimeSeconds != nil {
			start := *v.Video.StartTimeSeconds
			v.Video.StartTimeSeconds = &start
		}
		return v
	default:
		panic(fmt.Sprintf("models: unhandled block variant %T", b))
	}
}

// WithMeta returns a copy of b carrying meta in place of its own common fields
func WithMeta(b LessonBlock, meta BlockMeta) LessonBlock {
	switch v := b.(type) {
	case TextBlock:
		v.BlockMeta = meta
		return v
	case ChordDiagramBlock:
		v.BlockMeta = meta
		return v
	case FretboardDiagramBlock:
		v.BlockMeta = meta
		return v
	case VideoEmbedBlock:
		v.BlockMeta = meta
		return v
	default:
		panic(fmt.Sprintf("models: unhandled block variant %T", b))
	}
}

// BlockPatch is partial block data merged over an existing block (shallow, by JSON key)
type BlockPatch map[string]any
