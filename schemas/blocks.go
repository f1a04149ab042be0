package schemas

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
)

// ValidateBlock checks a fully formed block (for example one submitted by a client)
// against the same rules applied to tool payloads.
func ValidateBlock(block models.LessonBlock) error {
	meta := block.Meta()
	if meta.ID == "" {
		return errors.New("id is required")
	}
	if meta.CreatedBy != models.AuthorAI && meta.CreatedBy != models.AuthorUser {
		return fmt.Errorf("createdBy must be one of [ai, user], got %q", meta.CreatedBy)
	}

	switch b := block.(type) {
	case models.TextBlock:
		if b.Content == "" {
			return errors.New("content is required")
		}
	case models.ChordDiagramBlock:
		raw, err := json.Marshal(b.Data)
		if err != nil {
			return err
		}
		if _, err := DecodeChordDiagram(raw); err != nil {
			return err
		}
		if b.Data.ID == "" {
			return errors.New("data.id is required")
		}
	case models.FretboardDiagramBlock:
		raw, err := json.Marshal(b.Data)
		if err != nil {
			return err
		}
		if _, err := DecodeFretboardDiagram(raw); err != nil {
			return err
		}
		if b.Data.ID == "" {
			return errors.New("data.id is required")
		}
	case models.VideoEmbedBlock:
		if b.Video.Provider != models.VideoProviderYouTube {
			return fmt.Errorf("video.provider must be %q", models.VideoProviderYouTube)
		}
		raw, err := json.Marshal(b.Video)
		if err != nil {
			return err
		}
		if _, err := DecodeVideoEmbed(raw); err != nil {
			return err
		}
	default:
		panic(fmt.Sprintf("schemas: unhandled block variant %T", block))
	}
	return nil
}
