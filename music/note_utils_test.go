package music

import (
	"testing"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteAt(t *testing.T) {
	tests := []struct {
		name     string
		str      int
		fret     int
		expected models.NoteName
	}{
		{"open high E", 1, 0, models.NoteE},
		{"open low E", 6, 0, models.NoteE},
		{"A string 3rd fret", 5, 3, models.NoteC},
		{"G string 1st fret is sharp spelled", 3, 1, models.NoteGSharp},
		{"B string 1st fret", 2, 1, models.NoteC},
		{"12th fret wraps to open", 4, 12, models.NoteD},
		{"24th fret", 6, 24, models.NoteE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NoteAt(tt.str, tt.fret))
		})
	}
}

func TestSemitoneDistance(t *testing.T) {
	assert.Equal(t, 0, SemitoneDistance(models.NoteC, models.NoteC))
	assert.Equal(t, 4, SemitoneDistance(models.NoteC, models.NoteE))
	assert.Equal(t, 10, SemitoneDistance(models.NoteD, models.NoteC))
	assert.Equal(t, 0, SemitoneDistance(models.NoteCSharp, models.NoteDb))
	assert.Equal(t, 11, SemitoneDistance(models.NoteBb, models.NoteA))
}

func TestTranspose(t *testing.T) {
	tests := []struct {
		note      models.NoteName
		semitones int
		expected  models.NoteName
	}{
		{models.NoteC, 7, models.NoteG},
		{models.NoteC, -1, models.NoteB},
		{models.NoteA, 3, models.NoteC},
		{models.NoteEb, 0, models.NoteDSharp},
		{models.NoteE, -25, models.NoteDSharp},
		{models.NoteF, 36, models.NoteF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Transpose(tt.note, tt.semitones), "%s %+d", tt.note, tt.semitones)
	}
}

func TestIntervalInScale(t *testing.T) {
	formula := ScaleFormulas[ScaleBlues]

	interval, ok := IntervalInScale(models.NoteEb, models.NoteA, formula)
	require.True(t, ok)
	assert.Equal(t, models.IntervalSharpFourth, interval)

	interval, ok = IntervalInScale(models.NoteG, models.NoteA, formula)
	require.True(t, ok)
	assert.Equal(t, models.IntervalMinorSeventh, interval)

	_, ok = IntervalInScale(models.NoteB, models.NoteA, formula)
	assert.False(t, ok)
}

func TestIntervalForSemitones(t *testing.T) {
	assert.Equal(t, models.IntervalRoot, IntervalForSemitones(0))
	assert.Equal(t, models.IntervalFlatFifth, IntervalForSemitones(6))
	assert.Equal(t, models.IntervalSharpFifth, IntervalForSemitones(8))
	assert.Equal(t, models.IntervalMajorSeventh, IntervalForSemitones(-1))
	for semitones := 0; semitones < 12; semitones++ {
		assert.Equal(t, semitones, models.IntervalSemitones[IntervalForSemitones(semitones)])
	}
}

func TestFindNoteOnString(t *testing.T) {
	assert.Equal(t, []int{3, 15}, FindNoteOnString(models.NoteC, 5, 24))
	assert.Equal(t, []int{0, 12}, FindNoteOnString(models.NoteE, 1, 12))
	assert.Equal(t, []int{8}, FindNoteOnString(models.NoteC, 1, 12))
}

func TestChordNotes(t *testing.T) {
	notes, err := ChordNotes(models.NoteA, "m7")
	require.NoError(t, err)
	assert.Equal(t, []models.NoteName{models.NoteA, models.NoteC, models.NoteE, models.NoteG}, notes)

	_, err = ChordNotes(models.NoteA, "13b9")
	assert.Error(t, err)
}
