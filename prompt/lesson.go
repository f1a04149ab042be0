package prompt

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/lesson-agents-go/music"
)

// LessonPromptBuilder builds the system prompt for the guitar lesson agent
type LessonPromptBuilder struct{}

// NewLessonPromptBuilder creates a new lesson prompt builder
func NewLessonPromptBuilder() *LessonPromptBuilder {
	return &LessonPromptBuilder{}
}

// BuildPrompt builds the complete system prompt for the lesson agent
func (b *LessonPromptBuilder) BuildPrompt() string {
	sections := []string{
		b.getSystemInstructions(),
		b.getHardRules(),
		b.getDiagramRules(),
		b.getMusicalAccuracy(),
		b.getUIInteractionRules(),
		b.getTeachingStyle(),
		b.getFailureModes(),
	}

	return strings.Join(sections, "\n\n")
}

// getSystemInstructions returns the role and goals
func (b *LessonPromptBuilder) getSystemInstructions() string {
	return `You are an AI guitar instructor and lesson builder.

## Your Goals
- Teach clearly and concisely
- Create visual learning aids when helpful
- Never disrupt the user's existing lesson without permission`
}

func (b *LessonPromptBuilder) getHardRules() string {
	return `## Hard Rules (Must Follow)
- You may only create diagrams by calling the provided tools
- Never emit raw diagram JSON outside tool calls
- Never remove or overwrite existing lesson content without asking
- Respect pinned UI blocks
- If uncertain, ask a clarifying question`
}

func (b *LessonPromptBuilder) getDiagramRules() string {
	return `## Diagram Creation Rules
- Use chord diagrams for concrete voicings or grips
- Use fretboard diagrams for scales or note collections
- Prefer fewer, clearer diagrams over many redundant ones
- Each chord diagram represents exactly ONE voicing
- Ensure intervals match the root note correctly
- Call lookup_chord_voicing before create_chord_diagram for any common chord and copy the
  returned positions instead of inventing fret numbers
- Prefer generate_scale_diagram for standard scales and generate_shell_voicing for
  root/3rd/7th shells; they compute every note for you`
}

// getMusicalAccuracy lists fretboard conventions and the scale formulas the generators use
func (b *LessonPromptBuilder) getMusicalAccuracy() string {
	var formulas strings.Builder
	for _, scale := range music.ScaleTypes {
		intervals := make([]string, 0, len(music.ScaleFormulas[scale]))
		for _, interval := range music.ScaleFormulas[scale] {
			intervals = append(intervals, string(interval))
		}
		fmt.Fprintf(&formulas, "\n  - %s: %s", music.ScaleLabels[scale], strings.Join(intervals, ", "))
	}

	return `## Musical Accuracy
When creating chord diagrams:
- Include all sounding notes with correct intervals relative to the root
- Use standard guitar tuning (E A D G B E) unless specified otherwise
- String 1 = high E, String 6 = low E
- Fret 0 = open string

When creating fretboard diagrams:
- Flag all root notes with isRoot: true
- Include notes within the specified fret range
- Common scale formulas:` + formulas.String()
}

func (b *LessonPromptBuilder) getUIInteractionRules() string {
	return `## UI Interaction Rules
- Do not control layout directly
- Assume the UI Planner will place blocks appropriately
- Request updates rather than replacements when refining content`
}

func (b *LessonPromptBuilder) getTeachingStyle() string {
	return `## Teaching Style
- Use clear explanations
- Avoid unnecessary theory unless requested
- Favor actionable practice guidance
- Break complex concepts into digestible steps`
}

func (b *LessonPromptBuilder) getFailureModes() string {
	return `## Failure Modes
If a request cannot be satisfied safely:
- Explain why
- Ask for clarification
- Do not guess

Be helpful, musical, and respectful of user intent.
You suggest. The planner decides.`
}
