package planner

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/schemas"
)

// ActionType names a planner action
type ActionType string

const (
	ActionAddBlock           ActionType = "add_block"
	ActionUpdateBlock        ActionType = "update_block"
	ActionRequestRemoveBlock ActionType = "request_remove_block"
)

// updatableKeys are the block fields an update_block action may carry
var updatableKeys = map[string]bool{
	"content":        true,
	"data":           true,
	"animate":        true,
	"showIntervals":  true,
	"highlightRoots": true,
	"video":          true,
}

// Action is a mutation request from the agent or a client
type Action struct {
	Action   ActionType
	Block    models.LessonBlock // add_block
	InsertAt *int               // add_block
	BlockID  string             // update_block, request_remove_block
	NewData  models.BlockPatch  // update_block
	Reason   string             // request_remove_block
}

type actionWire struct {
	Action   ActionType        `json:"action"`
	Block    json.RawMessage   `json:"block,omitempty"`
	InsertAt *int              `json:"insertAt,omitempty"`
	BlockID  string            `json:"blockId,omitempty"`
	NewData  models.BlockPatch `json:"newData,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

// UnmarshalJSON decodes and validates an action. Blocks pass the same checks as tool output.
func (a *Action) UnmarshalJSON(data []byte) error {
	var wire actionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := Action{Action: wire.Action}
	switch wire.Action {
	case ActionAddBlock:
		if len(wire.Block) == 0 {
			return errors.New("block is required")
		}
		block, err := models.UnmarshalBlock(wire.Block)
		if err != nil {
			return err
		}
		if err := schemas.ValidateBlock(block); err != nil {
			return fmt.Errorf("invalid block: %w", err)
		}
		if wire.InsertAt != nil && *wire.InsertAt < 0 {
			return errors.New("insertAt must be >= 0")
		}
		out.Block = block
		out.InsertAt = wire.InsertAt
	case ActionUpdateBlock:
		if wire.BlockID == "" {
			return errors.New("blockId is required")
		}
		for key := range wire.NewData {
			if !updatableKeys[key] {
				return fmt.Errorf("newData.%s cannot be updated", key)
			}
		}
		out.BlockID = wire.BlockID
		out.NewData = wire.NewData
	case ActionRequestRemoveBlock:
		if wire.BlockID == "" {
			return errors.New("blockId is required")
		}
		out.BlockID = wire.BlockID
		out.Reason = wire.Reason
	default:
		return fmt.Errorf("unknown action: %q", wire.Action)
	}

	*a = out
	return nil
}

// MarshalJSON writes the wire form of the action
func (a Action) MarshalJSON() ([]byte, error) {
	wire := actionWire{
		Action:   a.Action,
		InsertAt: a.InsertAt,
		BlockID:  a.BlockID,
		NewData:  a.NewData,
		Reason:   a.Reason,
	}
	if a.Block != nil {
		raw, err := json.Marshal(a.Block)
		if err != nil {
			return nil, err
		}
		wire.Block = raw
	}
	return json.Marshal(wire)
}

// ApplyAction dispatches an action to the matching planner operation
func (p *Planner) ApplyAction(action Action) Result {
	switch action.Action {
	case ActionAddBlock:
		if action.Block == nil {
			return Result{Success: false, Message: "block is required"}
		}
		return p.AddBlock(action.Block, action.InsertAt)
	case ActionUpdateBlock:
		return p.UpdateBlock(action.BlockID, action.NewData)
	case ActionRequestRemoveBlock:
		return p.RequestRemoveBlock(action.BlockID, action.Reason)
	default:
		return Result{Success: false, Message: "Unknown action"}
	}
}
