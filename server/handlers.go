package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/Conceptual-Machines/lesson-agents-go/agents/coordination"
	"github.com/Conceptual-Machines/lesson-agents-go/agents/lesson"
	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/planner"
	"github.com/Conceptual-Machines/lesson-agents-go/reference"
	"github.com/Conceptual-Machines/lesson-agents-go/schemas"
	"github.com/gin-gonic/gin"
)

const defaultRemoveReason = "requested by user"

type chatRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

type createLessonRequest struct {
	Title string `json:"title"`
}

type renameLessonRequest struct {
	Title string `json:"title" binding:"required"`
}

type addBlockRequest struct {
	Block    json.RawMessage `json:"block" binding:"required"`
	InsertAt *int            `json:"insertAt" binding:"omitempty,min=0"`
}

type reorderRequest struct {
	Order []string `json:"order" binding:"required"`
}

// mutationResponse carries a planner outcome and the document after it
type mutationResponse struct {
	Result   planner.Result        `json:"result"`
	UISchema *models.LessonUIState `json:"uiSchema"`
}

func respondError(c *gin.Context, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

func respondManagerError(c *gin.Context, err error) {
	if errors.Is(err, coordination.ErrLessonNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	log.Printf("❌ Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	respondError(c, http.StatusInternalServerError, err)
}

// decodeJSON reads the body into v without struct validation
func decodeJSON(c *gin.Context, v any) error {
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// chat streams one agent turn as server-sent events. Every event except done is framed
// as "data: <json>\n\n" and the stream always ends with "data: [DONE]\n\n".
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.New("lessonId and message are required"))
		return
	}

	sse := newSSEWriter(c.Writer)
	relayFailed := false
	_, err := s.manager.HandleMessage(c.Request.Context(), req.LessonID, req.Message, func(event lesson.StreamEvent) error {
		if event.Type == lesson.EventDone {
			return nil
		}
		if err := sse.WriteEvent(event); err != nil {
			relayFailed = true
			return err
		}
		return nil
	})

	if err != nil && !sse.started {
		respondManagerError(c, err)
		return
	}
	if relayFailed {
		log.Printf("⚠️ Client for lesson %s went away mid-stream: %v", req.LessonID, err)
		return
	}
	if err != nil {
		log.Printf("❌ Chat turn for lesson %s failed: %v", req.LessonID, err)
		if writeErr := sse.WriteEvent(lesson.ErrorEvent(err.Error())); writeErr != nil {
			return
		}
	}
	if err := sse.WriteDone(); err != nil {
		log.Printf("⚠️ Failed to finish stream for lesson %s: %v", req.LessonID, err)
	}
}

func (s *Server) voicings(c *gin.Context) {
	root, quality := c.Param("root"), c.Param("quality")
	voicings := reference.LookupVoicings(root, quality)
	if len(voicings) == 0 {
		respondError(c, http.StatusNotFound, fmt.Errorf("no voicings found for %s %s", root, quality))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"root":     root,
		"quality":  reference.NormalizeQuality(quality),
		"voicings": voicings,
	})
}

// chord resolves a chord symbol to its spelling and reference voicings
func (s *Server) chord(c *gin.Context) {
	parsed, voicings, err := reference.LookupSymbol(c.Param("symbol"))
	if err != nil {
		respondError(c, http.StatusNotFound, err)
		return
	}
	notes, err := parsed.Notes()
	if err != nil {
		respondError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":   parsed.String(),
		"chord":    parsed,
		"notes":    notes,
		"voicings": voicings,
	})
}

func (s *Server) createLesson(c *gin.Context) {
	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	created, err := s.manager.CreateLesson(c.Request.Context(), req.Title)
	if err != nil {
		respondManagerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) listLessons(c *gin.Context) {
	lessons, err := s.manager.ListLessons(c.Request.Context())
	if err != nil {
		respondManagerError(c, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

func (s *Server) getLesson(c *gin.Context) {
	view, err := s.manager.GetLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondManagerError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) renameLesson(c *gin.Context) {
	var req renameLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}
	renamed, err := s.manager.RenameLesson(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		respondManagerError(c, err)
		return
	}
	c.JSON(http.StatusOK, renamed)
}

func (s *Server) deleteLesson(c *gin.Context) {
	if err := s.manager.DeleteLesson(c.Request.Context(), c.Param("id")); err != nil {
		respondManagerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// plannerOp runs against a lesson's planner and picks the response status
type plannerOp func(p *planner.Planner) (planner.Result, int)

func (s *Server) runPlannerOp(c *gin.Context, action string, op plannerOp) {
	var result planner.Result
	status := http.StatusOK
	state, err := s.manager.Mutate(c.Request.Context(), c.Param("id"), action, func(p *planner.Planner) bool {
		result, status = op(p)
		return result.Success
	})
	if err != nil {
		respondManagerError(c, err)
		return
	}
	c.JSON(status, mutationResponse{Result: result, UISchema: state})
}

// blockStatus maps the outcome of an operation on an existing block to a status code
func blockStatus(p *planner.Planner, blockID string, result planner.Result) int {
	switch {
	case result.Success:
		return http.StatusOK
	case result.RequiresConfirmation:
		return http.StatusConflict
	}
	if _, ok := p.GetBlock(blockID); !ok {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// userBlock decodes a block submitted by the editor, stamping missing metadata
func (s *Server) userBlock(raw json.RawMessage) (models.LessonBlock, error) {
	block, err := models.UnmarshalBlock(raw)
	if err != nil {
		return nil, err
	}
	meta := block.Meta()
	if meta.ID == "" {
		meta.ID = s.newID()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now().UTC()
	}
	meta.CreatedBy = models.AuthorUser
	block = models.WithMeta(block, meta)

	if err := schemas.ValidateBlock(block); err != nil {
		return nil, err
	}
	return block, nil
}

func (s *Server) addBlock(c *gin.Context) {
	var req addBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	block, err := s.userBlock(req.Block)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid block: %w", err))
		return
	}

	s.runPlannerOp(c, "add_block", func(p *planner.Planner) (planner.Result, int) {
		result := p.AddBlock(block, req.InsertAt)
		if !result.Success {
			return result, http.StatusConflict
		}
		return result, http.StatusCreated
	})
}

func (s *Server) updateBlock(c *gin.Context) {
	var patch models.BlockPatch
	if err := decodeJSON(c, &patch); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	blockID := c.Param("blockId")

	s.runPlannerOp(c, "update_block", func(p *planner.Planner) (planner.Result, int) {
		result := p.UpdateBlock(blockID, patch)
		return result, blockStatus(p, blockID, result)
	})
}

func (s *Server) confirmUpdateBlock(c *gin.Context) {
	var patch models.BlockPatch
	if err := decodeJSON(c, &patch); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	blockID := c.Param("blockId")

	s.runPlannerOp(c, "confirm_update_block", func(p *planner.Planner) (planner.Result, int) {
		result := planner.Result{Success: p.ConfirmUpdateBlock(blockID, patch), BlockID: blockID}
		if result.Success {
			result.Message = "Block updated"
		} else {
			result.Message = "Block update rejected"
		}
		return result, blockStatus(p, blockID, result)
	})
}

func (s *Server) requestRemoveBlock(c *gin.Context) {
	blockID := c.Param("blockId")
	reason := c.DefaultQuery("reason", defaultRemoveReason)

	s.runPlannerOp(c, "request_remove_block", func(p *planner.Planner) (planner.Result, int) {
		result := p.RequestRemoveBlock(blockID, reason)
		if result.RequiresConfirmation {
			return result, http.StatusAccepted
		}
		return result, blockStatus(p, blockID, result)
	})
}

func (s *Server) confirmRemoveBlock(c *gin.Context) {
	blockID := c.Param("blockId")

	s.runPlannerOp(c, "confirm_remove_block", func(p *planner.Planner) (planner.Result, int) {
		result := planner.Result{Success: p.ConfirmRemoveBlock(blockID), BlockID: blockID}
		if result.Success {
			result.Message = "Block removed"
		}
		return result, blockStatus(p, blockID, result)
	})
}

func (s *Server) togglePin(c *gin.Context) {
	blockID := c.Param("blockId")

	s.runPlannerOp(c, "toggle_pin", func(p *planner.Planner) (planner.Result, int) {
		result := planner.Result{Success: p.TogglePin(blockID), BlockID: blockID}
		switch {
		case !result.Success:
		case p.IsPinned(blockID):
			result.Message = "Block pinned"
		default:
			result.Message = "Block unpinned"
		}
		return result, blockStatus(p, blockID, result)
	})
}

func (s *Server) reorderBlocks(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errors.New("order is required"))
		return
	}

	s.runPlannerOp(c, "reorder_blocks", func(p *planner.Planner) (planner.Result, int) {
		if !p.ReorderBlocks(req.Order) {
			return planner.Result{Success: false, Message: "Invalid block order"}, http.StatusBadRequest
		}
		return planner.Result{Success: true, Message: "Order updated"}, http.StatusOK
	})
}

// applyAction runs a planner action proposed by the model or replayed by the editor
func (s *Server) applyAction(c *gin.Context) {
	var action planner.Action
	if err := decodeJSON(c, &action); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	s.runPlannerOp(c, string(action.Action), func(p *planner.Planner) (planner.Result, int) {
		result := p.ApplyAction(action)
		switch {
		case action.Action == planner.ActionAddBlock && result.Success:
			return result, http.StatusCreated
		case action.Action == planner.ActionAddBlock:
			return result, http.StatusConflict
		case action.Action == planner.ActionRequestRemoveBlock && result.RequiresConfirmation:
			return result, http.StatusAccepted
		}
		return result, blockStatus(p, action.BlockID, result)
	})
}
