// Package store persists lessons, their documents and their chat transcripts.
// Documents and transcripts are stored as opaque JSON; the last write wins.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
)

// ErrNotFound is returned when a lesson does not exist
var ErrNotFound = errors.New("lesson not found")

// Lesson is the catalog entry of a lesson
type Lesson struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the persistence collaborator of the lesson service
type Store interface {
	CreateLesson(ctx context.Context, title string) (Lesson, error)
	GetLesson(ctx context.Context, lessonID string) (Lesson, error)
	ListLessons(ctx context.Context) ([]Lesson, error)
	UpdateTitle(ctx context.Context, lessonID, title string) (Lesson, error)
	DeleteLesson(ctx context.Context, lessonID string) error

	LoadDocument(ctx context.Context, lessonID string) (*models.LessonUIState, error)
	SaveDocument(ctx context.Context, lessonID string, state *models.LessonUIState) error
	LoadTranscript(ctx context.Context, lessonID string) ([]models.ChatMessage, error)
	SaveTranscript(ctx context.Context, lessonID string, transcript []models.ChatMessage) error
}
