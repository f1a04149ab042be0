package planner

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func textBlock(id, content string) models.TextBlock {
	return models.NewTextBlock(id, models.AuthorAI, created, content)
}

func chordBlock(id string) models.ChordDiagramBlock {
	return models.NewChordDiagramBlock(id, models.AuthorAI, created, models.ChordDiagramData{
		ID:      "data-" + id,
		Root:    "C",
		Quality: "maj",
		Positions: []models.ChordNote{
			{Position: models.GuitarPosition{String: 5, Fret: 3}, Interval: "R", Note: "C"},
		},
	})
}

// seeded returns a planner holding blocks a, b, c in order with b pinned
func seeded(t *testing.T) *Planner {
	t.Helper()
	p := NewPlanner(models.NewLessonUIState("lesson-1"))
	require.True(t, p.AddBlockDirect(textBlock("a", "first")))
	require.True(t, p.AddBlockDirect(chordBlock("b")))
	require.True(t, p.AddBlockDirect(textBlock("c", "third")))
	require.True(t, p.TogglePin("b"))
	return p
}

func blockIDs(blocks []models.LessonBlock) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.Meta().ID
	}
	return ids
}

func assertConsistent(t *testing.T, p *Planner) {
	t.Helper()
	state := p.GetState()
	seen := map[string]bool{}
	for _, id := range state.Layout.Order {
		assert.Contains(t, state.Blocks, id)
		assert.False(t, seen[id], "duplicate id %s in order", id)
		seen[id] = true
	}
	for _, id := range state.Layout.Pinned {
		assert.Contains(t, state.Blocks, id)
	}
}

func intPtr(i int) *int { return &i }

func TestNewPlannerCopiesInitialState(t *testing.T) {
	initial := models.NewLessonUIState("lesson-1")
	initial.Blocks["a"] = textBlock("a", "hello")
	initial.Layout.Order = []string{"a"}

	p := NewPlanner(initial)
	initial.Layout.Order = append(initial.Layout.Order, "ghost")
	delete(initial.Blocks, "a")

	assert.Equal(t, []string{"a"}, blockIDs(p.GetBlocksInOrder()))
	assert.Equal(t, 1, p.BlockCount())
}

func TestGetStateIsIndependent(t *testing.T) {
	p := seeded(t)
	state := p.GetState()
	state.Layout.Order[0] = "zzz"
	state.Layout.Pinned = nil
	delete(state.Blocks, "a")

	assert.Equal(t, []string{"a", "b", "c"}, p.GetState().Layout.Order)
	assert.True(t, p.IsPinned("b"))
	assert.Equal(t, 3, p.BlockCount())
}

func TestGetBlocksInOrderSkipsMissing(t *testing.T) {
	initial := models.NewLessonUIState("lesson-1")
	initial.Blocks["a"] = textBlock("a", "hello")
	initial.Layout.Order = []string{"ghost", "a"}

	assert.Equal(t, []string{"a"}, blockIDs(NewPlanner(initial).GetBlocksInOrder()))
}

func TestAddBlock(t *testing.T) {
	tests := []struct {
		name        string
		insertAt    *int
		expectOrder []string
	}{
		{name: "append by default", insertAt: nil, expectOrder: []string{"a", "b", "c", "n"}},
		{name: "insert at front", insertAt: intPtr(0), expectOrder: []string{"n", "a", "b", "c"}},
		{name: "insert in middle", insertAt: intPtr(2), expectOrder: []string{"a", "b", "n", "c"}},
		{name: "insert at end index", insertAt: intPtr(3), expectOrder: []string{"a", "b", "c", "n"}},
		{name: "out of range appends", insertAt: intPtr(9), expectOrder: []string{"a", "b", "c", "n"}},
		{name: "negative appends", insertAt: intPtr(-1), expectOrder: []string{"a", "b", "c", "n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := seeded(t)
			result := p.AddBlock(textBlock("n", "new"), tt.insertAt)
			assert.Equal(t, Result{Success: true, BlockID: "n", Message: "Added TextBlock block"}, result)
			assert.Equal(t, tt.expectOrder, p.GetState().Layout.Order)
			assertConsistent(t, p)
		})
	}
}

func TestAddBlockRejectsDuplicateID(t *testing.T) {
	p := seeded(t)
	before := p.GetState()

	result := p.AddBlock(textBlock("a", "impostor"), intPtr(0))

	assert.False(t, result.Success)
	assert.Equal(t, `Block ID "a" already exists`, result.Message)
	assert.Equal(t, before, p.GetState())
	assert.False(t, p.AddBlockDirect(textBlock("c", "again")))
	assert.Equal(t, before, p.GetState())
}

func TestUpdateBlock(t *testing.T) {
	p := seeded(t)

	result := p.UpdateBlock("a", models.BlockPatch{"content": "rewritten"})
	assert.Equal(t, Result{Success: true, BlockID: "a", Message: "Block updated"}, result)
	block, ok := p.GetBlock("a")
	require.True(t, ok)
	assert.Equal(t, "rewritten", block.(models.TextBlock).Content)

	result = p.UpdateBlock("missing", models.BlockPatch{"content": "x"})
	assert.Equal(t, Result{Success: false, Message: `Block "missing" not found`}, result)
}

func TestUpdateBlockPreservesImmutableFields(t *testing.T) {
	p := seeded(t)
	original, _ := p.GetBlock("c")

	result := p.UpdateBlock("c", models.BlockPatch{
		"id":        "hijacked",
		"type":      "VideoEmbed",
		"createdBy": "user",
		"createdAt": "1999-01-01T00:00:00Z",
		"content":   "changed",
	})
	require.True(t, result.Success, result.Message)

	updated, ok := p.GetBlock("c")
	require.True(t, ok)
	assert.Equal(t, original.Meta(), updated.Meta())
	assert.Equal(t, "changed", updated.(models.TextBlock).Content)
	_, hijacked := p.GetBlock("hijacked")
	assert.False(t, hijacked)

	require.True(t, p.TogglePin("c"))
	require.True(t, p.ConfirmUpdateBlock("c", models.BlockPatch{"id": "x", "createdBy": "user", "content": "again"}))
	updated, _ = p.GetBlock("c")
	assert.Equal(t, original.Meta(), updated.Meta())
}

func TestUpdateBlockRejectsUndecodablePatch(t *testing.T) {
	p := seeded(t)
	before := p.GetState()

	result := p.UpdateBlock("a", models.BlockPatch{"content": 42})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Invalid block update")
	assert.Equal(t, before, p.GetState())
	assert.False(t, p.ConfirmUpdateBlock("a", models.BlockPatch{"content": []int{1}}))
	assert.Equal(t, before, p.GetState())
}

func TestUpdateBlockRejectsInvalidResult(t *testing.T) {
	start := 7
	tests := []struct {
		name        string
		block       models.LessonBlock
		patch       models.BlockPatch
		expectError string
	}{
		{
			name:        "video provider",
			block:       models.NewVideoEmbedBlock("v", models.AuthorAI, created, "dQw4w9WgXcQ", &start),
			patch:       models.BlockPatch{"video": map[string]any{"provider": "vimeo", "videoId": "", "startTimeSeconds": -7}},
			expectError: `video.provider must be "youtube"`,
		},
		{
			name:        "video start time",
			block:       models.NewVideoEmbedBlock("v", models.AuthorAI, created, "dQw4w9WgXcQ", nil),
			patch:       models.BlockPatch{"video": map[string]any{"provider": "youtube", "videoId": "abc", "startTimeSeconds": -7}},
			expectError: "startTimeSeconds",
		},
		{
			name:        "chord data",
			block:       chordBlock("k"),
			patch:       models.BlockPatch{"data": map[string]any{"root": "H", "positions": []any{}}},
			expectError: "root",
		},
		{
			name:        "empty text",
			block:       textBlock("k", "keep me"),
			patch:       models.BlockPatch{"content": ""},
			expectError: "content is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(models.NewLessonUIState("lesson-1"))
			require.True(t, p.AddBlockDirect(tt.block))
			id := tt.block.Meta().ID
			before := p.GetState()

			result := p.UpdateBlock(id, tt.patch)

			assert.False(t, result.Success)
			assert.False(t, result.RequiresConfirmation)
			assert.Contains(t, result.Message, "Invalid block update")
			assert.Contains(t, result.Message, tt.expectError)
			assert.Equal(t, before, p.GetState())

			require.True(t, p.TogglePin(id))
			pinned := p.GetState()
			assert.False(t, p.ConfirmUpdateBlock(id, tt.patch))
			assert.Equal(t, pinned, p.GetState())
		})
	}
}

func TestApplyActionRejectsInvalidUpdate(t *testing.T) {
	p := NewPlanner(models.NewLessonUIState("lesson-1"))
	require.True(t, p.AddBlockDirect(models.NewVideoEmbedBlock("v", models.AuthorAI, created, "dQw4w9WgXcQ", nil)))
	before := p.GetState()

	var action Action
	require.NoError(t, json.Unmarshal([]byte(
		`{"action":"update_block","blockId":"v","newData":{"video":{"provider":"vimeo","videoId":"","startTimeSeconds":-7}}}`,
	), &action))
	result := p.ApplyAction(action)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Invalid block update")
	assert.Equal(t, before, p.GetState())
}

func TestPinProtection(t *testing.T) {
	patches := []models.BlockPatch{
		{"animate": true},
		{"data": map[string]any{"root": "D"}},
		{"content": "text on a chord block"},
		{},
	}

	for i, patch := range patches {
		t.Run(fmt.Sprintf("patch %d", i), func(t *testing.T) {
			p := seeded(t)
			before, _ := p.GetBlock("b")

			result := p.UpdateBlock("b", patch)

			assert.False(t, result.Success)
			assert.True(t, result.RequiresConfirmation)
			assert.Equal(t, "b", result.BlockID)
			assert.Equal(t, "This block is pinned. User confirmation required to update.", result.Message)
			after, _ := p.GetBlock("b")
			assert.Equal(t, before, after)
		})
	}

	p := seeded(t)
	require.True(t, p.ConfirmUpdateBlock("b", models.BlockPatch{"animate": true}))
	after, _ := p.GetBlock("b")
	assert.True(t, after.(models.ChordDiagramBlock).Animate)
	assert.True(t, p.IsPinned("b"))
	assert.False(t, p.ConfirmUpdateBlock("missing", models.BlockPatch{}))
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	for _, id := range []string{"a", "b"} {
		t.Run(id, func(t *testing.T) {
			p := seeded(t)
			before := p.GetState()

			result := p.RequestRemoveBlock(id, "cleanup")
			assert.Equal(t, Result{
				Success:              false,
				RequiresConfirmation: true,
				BlockID:              id,
				Message:              "AI wants to remove this block: cleanup",
			}, result)
			assert.Equal(t, before, p.GetState())

			assert.True(t, p.ConfirmRemoveBlock(id))
			state := p.GetState()
			assert.NotContains(t, state.Blocks, id)
			assert.NotContains(t, state.Layout.Order, id)
			assert.NotContains(t, state.Layout.Pinned, id)
			assertConsistent(t, p)

			assert.False(t, p.ConfirmRemoveBlock(id))
		})
	}

	p := seeded(t)
	assert.Equal(t, Result{Success: false, Message: `Block "zz" not found`}, p.RequestRemoveBlock("zz", "x"))
}

func TestReorderBlocks(t *testing.T) {
	tests := []struct {
		name        string
		newOrder    []string
		expectOK    bool
		expectOrder []string
	}{
		{name: "permutation", newOrder: []string{"c", "a", "b"}, expectOK: true, expectOrder: []string{"c", "a", "b"}},
		{name: "subset is accepted", newOrder: []string{"b"}, expectOK: true, expectOrder: []string{"b"}},
		{name: "empty", newOrder: []string{}, expectOK: true, expectOrder: []string{}},
		{name: "unknown id", newOrder: []string{"a", "ghost"}, expectOK: false, expectOrder: []string{"a", "b", "c"}},
		{name: "duplicate id", newOrder: []string{"a", "a", "b"}, expectOK: false, expectOrder: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := seeded(t)
			assert.Equal(t, tt.expectOK, p.ReorderBlocks(tt.newOrder))
			assert.Equal(t, tt.expectOrder, p.GetState().Layout.Order)
			assert.Equal(t, 3, p.BlockCount())
			assertConsistent(t, p)
		})
	}
}

func TestTogglePinIsIdempotentInPairs(t *testing.T) {
	p := seeded(t)
	for _, id := range []string{"a", "b", "c"} {
		before := p.IsPinned(id)
		require.True(t, p.TogglePin(id))
		assert.Equal(t, !before, p.IsPinned(id))
		require.True(t, p.TogglePin(id))
		assert.Equal(t, before, p.IsPinned(id))
	}
	assert.False(t, p.TogglePin("ghost"))
	assert.False(t, p.IsPinned("ghost"))
}

func TestApplyAction(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect Result
	}{
		{
			name: "add",
			raw: `{"action":"add_block","insertAt":0,"block":{"id":"n","type":"TextBlock","createdBy":"user",` +
				`"createdAt":"2025-01-01T00:00:00Z","content":"hi"}}`,
			expect: Result{Success: true, BlockID: "n", Message: "Added TextBlock block"},
		},
		{
			name:   "update pinned",
			raw:    `{"action":"update_block","blockId":"b","newData":{"animate":true}}`,
			expect: Result{Success: false, RequiresConfirmation: true, BlockID: "b", Message: "This block is pinned. User confirmation required to update."},
		},
		{
			name:   "update",
			raw:    `{"action":"update_block","blockId":"a","newData":{"content":"new"}}`,
			expect: Result{Success: true, BlockID: "a", Message: "Block updated"},
		},
		{
			name:   "remove",
			raw:    `{"action":"request_remove_block","blockId":"c","reason":"duplicate"}`,
			expect: Result{Success: false, RequiresConfirmation: true, BlockID: "c", Message: "AI wants to remove this block: duplicate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var action Action
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &action))
			assert.Equal(t, tt.expect, seeded(t).ApplyAction(action))
		})
	}

	assert.Equal(t, Result{Success: false, Message: "Unknown action"}, seeded(t).ApplyAction(Action{Action: "rename"}))
}

func TestActionDecodingRejects(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expectError string
	}{
		{name: "unknown action", raw: `{"action":"rename"}`, expectError: `unknown action: "rename"`},
		{name: "add without block", raw: `{"action":"add_block"}`, expectError: "block is required"},
		{
			name:        "add invalid block",
			raw:         `{"action":"add_block","block":{"id":"n","type":"TextBlock","createdBy":"ai","createdAt":"2025-01-01T00:00:00Z","content":""}}`,
			expectError: "invalid block: content is required",
		},
		{
			name:        "add bad author",
			raw:         `{"action":"add_block","block":{"id":"n","type":"TextBlock","createdBy":"robot","createdAt":"2025-01-01T00:00:00Z","content":"x"}}`,
			expectError: "createdBy must be one of",
		},
		{name: "update without id", raw: `{"action":"update_block","newData":{}}`, expectError: "blockId is required"},
		{name: "update immutable key", raw: `{"action":"update_block","blockId":"a","newData":{"type":"VideoEmbed"}}`, expectError: "newData.type cannot be updated"},
		{name: "remove without id", raw: `{"action":"request_remove_block","reason":"x"}`, expectError: "blockId is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var action Action
			err := json.Unmarshal([]byte(tt.raw), &action)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}
