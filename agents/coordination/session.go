package coordination

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/agents/lesson"
	"github.com/Conceptual-Machines/lesson-agents-go/llm"
	"github.com/Conceptual-Machines/lesson-agents-go/metrics"
	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/Conceptual-Machines/lesson-agents-go/planner"
	"github.com/Conceptual-Machines/lesson-agents-go/store"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrLessonNotFound is returned for operations on a lesson the store does not know
var ErrLessonNotFound = errors.New("lesson not found")

// Agent streams one user turn
type Agent interface {
	Stream(ctx context.Context, history []llm.Message) iter.Seq[lesson.StreamEvent]
}

// StreamEventCallback receives each agent event as it happens. Returning an error
// stops the turn.
type StreamEventCallback func(event lesson.StreamEvent) error

// Session is one open lesson. turnMu serializes chat turns; mu guards the planner and
// transcript and is never held while the model streams, so reads and planner edits
// proceed during a turn.
type Session struct {
	turnMu     sync.Mutex
	mu         sync.Mutex
	lessonID   string
	planner    *planner.Planner
	transcript []models.ChatMessage
}

// TurnResult summarizes a completed chat turn
type TurnResult struct {
	Response    string                   `json:"response"`
	BlocksAdded []string                 `json:"blocksAdded"`
	ToolCalls   []models.ToolCallSummary `json:"toolCalls"`
	Error       string                   `json:"error,omitempty"`
}

// LessonView is a lesson with its current document and transcript
type LessonView struct {
	store.Lesson
	Document   *models.LessonUIState `json:"uiSchema"`
	Transcript []models.ChatMessage  `json:"messages"`
}

// SessionManager keeps recently used lessons in memory and serializes work on each one
type SessionManager struct {
	store    store.Store
	agent    Agent
	sessions *lru.Cache[string, *Session]
	loadMu   sync.Mutex
	prom     *metrics.PrometheusMetrics
	now      func() time.Time
	newID    func() string
}

// Option customizes a SessionManager
type Option func(*SessionManager)

// WithPrometheus counts planner operations on m
func WithPrometheus(m *metrics.PrometheusMetrics) Option {
	return func(sm *SessionManager) {
		sm.prom = m
	}
}

// WithClock overrides the transcript timestamp source
func WithClock(now func() time.Time) Option {
	return func(sm *SessionManager) {
		sm.now = now
	}
}

// NewSessionManager creates a manager holding at most cacheSize open sessions
func NewSessionManager(st store.Store, agent Agent, cacheSize int, opts ...Option) (*SessionManager, error) {
	sessions, err := lru.New[string, *Session](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	sm := &SessionManager{
		store:    st,
		agent:    agent,
		sessions: sessions,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm, nil
}

// session returns the open session for lessonID, loading it from the store on a miss
func (m *SessionManager) session(ctx context.Context, lessonID string) (*Session, error) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if sess, ok := m.sessions.Get(lessonID); ok {
		return sess, nil
	}

	document, err := m.store.LoadDocument(ctx, lessonID)
	if err != nil {
		return nil, storeError(lessonID, "load document", err)
	}
	transcript, err := m.store.LoadTranscript(ctx, lessonID)
	if err != nil {
		return nil, storeError(lessonID, "load transcript", err)
	}

	sess := &Session{
		lessonID:   lessonID,
		planner:    planner.NewPlanner(document),
		transcript: transcript,
	}
	m.sessions.Add(lessonID, sess)
	log.Printf("📂 Opened lesson session %s (%d blocks, %d messages)", lessonID, sess.planner.BlockCount(), len(transcript))
	return sess, nil
}

func storeError(lessonID, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
	}
	return fmt.Errorf("failed to %s for lesson %s: %w", op, lessonID, err)
}

// buildHistory turns the transcript plus the new message into model messages.
// Entries with no text are skipped since providers reject empty text blocks.
func buildHistory(transcript []models.ChatMessage, message string) []llm.Message {
	history := make([]llm.Message, 0, len(transcript)+1)
	for _, entry := range transcript {
		if strings.TrimSpace(entry.Content) == "" {
			continue
		}
		role := llm.RoleUser
		if entry.Role == models.RoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.TextMessage(role, entry.Content))
	}
	return append(history, llm.TextMessage(llm.RoleUser, message))
}

// HandleMessage runs one chat turn for a lesson. Every agent event is passed to emit in
// order; blocks from successful tool calls are appended to the document once the stream
// ends, and the document and transcript are saved even when the turn ends with an error
// event. Edits made through Mutate while the model streams are kept.
func (m *SessionManager) HandleMessage(ctx context.Context, lessonID, message string, emit StreamEventCallback) (*TurnResult, error) {
	sess, err := m.session(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	// only turns append to the transcript, so this snapshot stays current under turnMu
	sess.mu.Lock()
	history := buildHistory(sess.transcript, message)
	sess.mu.Unlock()

	log.Printf("💬 Lesson %s: handling message (%d chars)", lessonID, len(message))
	userEntry := models.ChatMessage{
		ID:        m.newID(),
		Role:      models.RoleUser,
		Content:   message,
		CreatedAt: m.now().UTC(),
	}

	result := &TurnResult{BlocksAdded: []string{}, ToolCalls: []models.ToolCallSummary{}}
	var produced []models.LessonBlock
	var fullText strings.Builder
	var relayErr error

	for event := range m.agent.Stream(ctx, history) {
		switch event.Type {
		case lesson.EventText:
			fullText.WriteString(event.Content)
		case lesson.EventToolResult:
			summary := models.ToolCallSummary{Success: event.Result.Success, Error: event.Result.Error}
			if event.Result.Success && event.Result.Block != nil {
				summary.BlockID = event.Result.Block.Meta().ID
				produced = append(produced, event.Result.Block)
			}
			result.ToolCalls = append(result.ToolCalls, summary)
		case lesson.EventDone:
			result.Response = event.FullResponse
		case lesson.EventError:
			result.Error = event.Error
		}

		if err := emit(event); err != nil {
			relayErr = err
			break
		}
	}
	if result.Response == "" {
		result.Response = fullText.String()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	for _, block := range produced {
		id := block.Meta().ID
		if !sess.planner.AddBlockDirect(block) {
			log.Printf("⚠️ Lesson %s: block %s already exists, skipping", lessonID, id)
			continue
		}
		result.BlocksAdded = append(result.BlocksAdded, id)
	}
	m.prom.PlannerAction("ingest_blocks", len(result.BlocksAdded) == len(produced))

	assistantEntry := models.ChatMessage{
		ID:        m.newID(),
		Role:      models.RoleAssistant,
		Content:   result.Response,
		CreatedAt: m.now().UTC(),
		ToolCalls: result.ToolCalls,
	}
	transcript := append(append([]models.ChatMessage(nil), sess.transcript...), userEntry, assistantEntry)

	// use a context that survives a disconnected client so the turn is not lost
	saveCtx := context.WithoutCancel(ctx)
	if err := m.store.SaveDocument(saveCtx, lessonID, sess.planner.GetState()); err != nil {
		m.sessions.Remove(lessonID)
		return nil, storeError(lessonID, "save document", err)
	}
	if err := m.store.SaveTranscript(saveCtx, lessonID, transcript); err != nil {
		m.sessions.Remove(lessonID)
		return nil, storeError(lessonID, "save transcript", err)
	}
	sess.transcript = transcript

	if relayErr != nil {
		return result, fmt.Errorf("failed to relay event: %w", relayErr)
	}
	log.Printf("✅ Lesson %s: turn complete, %d blocks added", lessonID, len(result.BlocksAdded))
	return result, nil
}

// Mutate runs fn against the lesson's planner. When fn reports a change the document
// is saved before the new state is returned. action labels the operation in metrics.
func (m *SessionManager) Mutate(ctx context.Context, lessonID, action string, fn func(p *planner.Planner) bool) (*models.LessonUIState, error) {
	sess, err := m.session(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	changed := fn(sess.planner)
	m.prom.PlannerAction(action, changed)
	state := sess.planner.GetState()
	if !changed {
		return state, nil
	}

	if err := m.store.SaveDocument(ctx, lessonID, state); err != nil {
		// drop the session so the next request reloads the last saved document
		m.sessions.Remove(lessonID)
		return nil, storeError(lessonID, "save document", err)
	}
	return state, nil
}

// CreateLesson creates an empty lesson
func (m *SessionManager) CreateLesson(ctx context.Context, title string) (store.Lesson, error) {
	created, err := m.store.CreateLesson(ctx, title)
	if err != nil {
		return store.Lesson{}, fmt.Errorf("failed to create lesson: %w", err)
	}
	log.Printf("📝 Created lesson %s (%q)", created.ID, created.Title)
	return created, nil
}

// GetLesson returns a lesson with its live document and transcript
func (m *SessionManager) GetLesson(ctx context.Context, lessonID string) (*LessonView, error) {
	entry, err := m.store.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, storeError(lessonID, "load lesson", err)
	}
	sess, err := m.session(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return &LessonView{
		Lesson:     entry,
		Document:   sess.planner.GetState(),
		Transcript: append([]models.ChatMessage{}, sess.transcript...),
	}, nil
}

// ListLessons returns the lesson catalog
func (m *SessionManager) ListLessons(ctx context.Context) ([]store.Lesson, error) {
	return m.store.ListLessons(ctx)
}

// RenameLesson changes a lesson's title
func (m *SessionManager) RenameLesson(ctx context.Context, lessonID, title string) (store.Lesson, error) {
	renamed, err := m.store.UpdateTitle(ctx, lessonID, title)
	if err != nil {
		return store.Lesson{}, storeError(lessonID, "rename lesson", err)
	}
	return renamed, nil
}

// DeleteLesson removes a lesson and closes its session
func (m *SessionManager) DeleteLesson(ctx context.Context, lessonID string) error {
	m.loadMu.Lock()
	m.sessions.Remove(lessonID)
	m.loadMu.Unlock()

	if err := m.store.DeleteLesson(ctx, lessonID); err != nil {
		return storeError(lessonID, "delete lesson", err)
	}
	log.Printf("🗑️ Deleted lesson %s", lessonID)
	return nil
}
