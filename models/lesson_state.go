package models

import (
	"encoding/json"
	"fmt"
)

// LessonLayout is the render order and pin set of a lesson document
type LessonLayout struct {
	Order  []string `json:"order"`
	Pinned []string `json:"pinned"`
}

// BlockMap indexes blocks by id
type BlockMap map[string]LessonBlock

// MarshalJSON writes an empty object for a nil map
func (m BlockMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]LessonBlock(m))
}

// UnmarshalJSON decodes each entry through UnmarshalBlock
func (m *BlockMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(BlockMap, len(raw))
	for id, blob := range raw {
		block, err := UnmarshalBlock(blob)
		if err != nil {
			return fmt.Errorf("block %q: %w", id, err)
		}
		out[id] = block
	}
	*m = out
	return nil
}

// LessonUIState is the lesson document: blocks plus their layout.
// Every id in Layout.Order and Layout.Pinned exists in Blocks and Order has no duplicates.
type LessonUIState struct {
	LessonID string       `json:"lessonId"`
	Layout   LessonLayout `json:"layout"`
	Blocks   BlockMap     `json:"blocks"`
}

// NewLessonUIState returns an empty document for a lesson
func NewLessonUIState(lessonID string) *LessonUIState {
	return &LessonUIState{
		LessonID: lessonID,
		Layout: LessonLayout{
			Order:  []string{},
			Pinned: []string{},
		},
		Blocks: BlockMap{},
	}
}

// Clone returns a deep copy that shares no mutable state with s
func (s *LessonUIState) Clone() *LessonUIState {
	out := &LessonUIState{
		LessonID: s.LessonID,
		Layout: LessonLayout{
			Order:  append([]string{}, s.Layout.Order...),
			Pinned: append([]string{}, s.Layout.Pinned...),
		},
		Blocks: make(BlockMap, len(s.Blocks)),
	}
	for id, block := range s.Blocks {
		out.Blocks[id] = CloneBlock(block)
	}
	return out
}
