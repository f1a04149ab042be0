// Package planner owns a lesson document during an editing session. Every mutation of
// blocks, order or pins goes through a Planner, which refuses to overwrite pinned
// content or remove anything without an explicit confirmation step.
//
// A Planner is not safe for concurrent use; callers confine each instance to one session.
package planner

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/schemas"
)

// Result is the outcome of an operation that may be refused
type Result struct {
	Success              bool   `json:"success"`
	RequiresConfirmation bool   `json:"requiresConfirmation,omitempty"`
	Message              string `json:"message,omitempty"`
	BlockID              string `json:"blockId,omitempty"`
}

// Planner is the single mutator of a LessonUIState
type Planner struct {
	state *models.LessonUIState
}

// NewPlanner starts a session from a deep copy of initial. A nil state starts an empty document.
func NewPlanner(initial *models.LessonUIState) *Planner {
	if initial == nil {
		return &Planner{state: models.NewLessonUIState("")}
	}
	state := initial.Clone()
	if state.Blocks == nil {
		state.Blocks = models.BlockMap{}
	}
	return &Planner{state: state}
}

// GetState returns an independent copy of the document
func (p *Planner) GetState() *models.LessonUIState {
	return p.state.Clone()
}

// GetBlocksInOrder returns copies of the blocks in render order, skipping ids with no block
func (p *Planner) GetBlocksInOrder() []models.LessonBlock {
	blocks := make([]models.LessonBlock, 0, len(p.state.Layout.Order))
	for _, id := range p.state.Layout.Order {
		if block, ok := p.state.Blocks[id]; ok {
			blocks = append(blocks, models.CloneBlock(block))
		}
	}
	return blocks
}

// GetBlock returns a copy of one block
func (p *Planner) GetBlock(blockID string) (models.LessonBlock, bool) {
	block, ok := p.state.Blocks[blockID]
	if !ok {
		return nil, false
	}
	return models.CloneBlock(block), true
}

// BlockCount is the number of blocks in the document
func (p *Planner) BlockCount() int {
	return len(p.state.Blocks)
}

// IsPinned reports whether blockID is pinned
func (p *Planner) IsPinned(blockID string) bool {
	return slices.Contains(p.state.Layout.Pinned, blockID)
}

func (p *Planner) exists(blockID string) bool {
	_, ok := p.state.Blocks[blockID]
	return ok
}

// AddBlock inserts block at insertAt when it is a valid index (0..len(order)), otherwise appends.
// It fails only when the id is already taken.
func (p *Planner) AddBlock(block models.LessonBlock, insertAt *int) Result {
	meta := block.Meta()
	if p.exists(meta.ID) {
		return Result{Success: false, Message: fmt.Sprintf("Block ID %q already exists", meta.ID)}
	}

	p.state.Blocks[meta.ID] = models.CloneBlock(block)
	order := p.state.Layout.Order
	if insertAt != nil && *insertAt >= 0 && *insertAt <= len(order) {
		p.state.Layout.Order = slices.Insert(order, *insertAt, meta.ID)
	} else {
		p.state.Layout.Order = append(order, meta.ID)
	}

	return Result{Success: true, BlockID: meta.ID, Message: fmt.Sprintf("Added %s block", meta.Type)}
}

// AddBlockDirect appends block, returning false on an id collision.
// Used to ingest the blocks an agent turn produced.
func (p *Planner) AddBlockDirect(block models.LessonBlock) bool {
	meta := block.Meta()
	if p.exists(meta.ID) {
		return false
	}
	p.state.Blocks[meta.ID] = models.CloneBlock(block)
	p.state.Layout.Order = append(p.state.Layout.Order, meta.ID)
	return true
}

// UpdateBlock merges patch over an unpinned block. Pinned blocks are left untouched and
// the result asks for confirmation.
func (p *Planner) UpdateBlock(blockID string, patch models.BlockPatch) Result {
	existing, ok := p.state.Blocks[blockID]
	if !ok {
		return notFound(blockID)
	}
	if p.IsPinned(blockID) {
		return Result{
			Success:              false,
			RequiresConfirmation: true,
			BlockID:              blockID,
			Message:              "This block is pinned. User confirmation required to update.",
		}
	}

	merged, err := mergeBlock(existing, patch)
	if err != nil {
		return Result{Success: false, BlockID: blockID, Message: fmt.Sprintf("Invalid block update: %v", err)}
	}
	p.state.Blocks[blockID] = merged
	return Result{Success: true, BlockID: blockID, Message: "Block updated"}
}

// ConfirmUpdateBlock merges patch regardless of pin state. The caller has already
// obtained the user's confirmation.
func (p *Planner) ConfirmUpdateBlock(blockID string, patch models.BlockPatch) bool {
	existing, ok := p.state.Blocks[blockID]
	if !ok {
		return false
	}
	merged, err := mergeBlock(existing, patch)
	if err != nil {
		return false
	}
	p.state.Blocks[blockID] = merged
	return true
}

// RequestRemoveBlock never removes anything; an existing block always needs confirmation
func (p *Planner) RequestRemoveBlock(blockID, reason string) Result {
	if !p.exists(blockID) {
		return notFound(blockID)
	}
	return Result{
		Success:              false,
		RequiresConfirmation: true,
		BlockID:              blockID,
		Message:              fmt.Sprintf("AI wants to remove this block: %s", reason),
	}
}

// ConfirmRemoveBlock deletes the block and drops its id from order and pins
func (p *Planner) ConfirmRemoveBlock(blockID string) bool {
	if !p.exists(blockID) {
		return false
	}
	delete(p.state.Blocks, blockID)
	p.state.Layout.Order = slices.DeleteFunc(p.state.Layout.Order, func(id string) bool { return id == blockID })
	p.state.Layout.Pinned = slices.DeleteFunc(p.state.Layout.Pinned, func(id string) bool { return id == blockID })
	return true
}

// ReorderBlocks replaces the order when every id exists and none repeats.
// Blocks left out of newOrder stay in the document but are no longer rendered.
func (p *Planner) ReorderBlocks(newOrder []string) bool {
	seen := make(map[string]bool, len(newOrder))
	for _, id := range newOrder {
		if !p.exists(id) || seen[id] {
			return false
		}
		seen[id] = true
	}
	p.state.Layout.Order = slices.Clone(newOrder)
	if p.state.Layout.Order == nil {
		p.state.Layout.Order = []string{}
	}
	return true
}

// TogglePin pins or unpins an existing block
func (p *Planner) TogglePin(blockID string) bool {
	if !p.exists(blockID) {
		return false
	}
	if i := slices.Index(p.state.Layout.Pinned, blockID); i >= 0 {
		p.state.Layout.Pinned = slices.Delete(p.state.Layout.Pinned, i, i+1)
	} else {
		p.state.Layout.Pinned = append(p.state.Layout.Pinned, blockID)
	}
	return true
}

func notFound(blockID string) Result {
	return Result{Success: false, Message: fmt.Sprintf("Block %q not found", blockID)}
}

// mergeBlock overlays patch on the JSON form of existing, then restores the immutable
// fields and decodes the result back into a variant. The merged block must still be valid.
func mergeBlock(existing models.LessonBlock, patch models.BlockPatch) (models.LessonBlock, error) {
	raw, err := json.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("failed to encode block: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode block: %w", err)
	}

	for key, value := range patch {
		fields[key] = value
	}
	meta := existing.Meta()
	fields["id"] = meta.ID
	fields["type"] = meta.Type
	fields["createdBy"] = meta.CreatedBy
	fields["createdAt"] = meta.CreatedAt

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged block: %w", err)
	}
	block, err := models.UnmarshalBlock(merged)
	if err != nil {
		return nil, err
	}
	block = models.WithMeta(block, meta)
	if err := schemas.ValidateBlock(block); err != nil {
		return nil, err
	}
	return block, nil
}
