package tui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertrainer/gto"
)

func newTestDrill(t *testing.T) (*DrillModel, *quartz.Mock) {
	t.Helper()
	table, err := gto.PushFoldTable()
	require.NoError(t, err)

	clock := quartz.NewMock(t)
	model := NewDrillModel(gto.NewStore(table), log.New(io.Discard), clock, 1)
	require.NoError(t, model.loadError)
	return model, clock
}

func typeAnswer(model *DrillModel, answer string) *DrillModel {
	for _, r := range answer {
		updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		model = updated.(*DrillModel)
	}
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(*DrillModel)
}

func TestDrillShowsQuestion(t *testing.T) {
	model, _ := newTestDrill(t)

	view := model.View()
	require.Contains(t, view, "Push/Fold Drill")
	require.Contains(t, view, model.question.Situation.HandClass)
	require.Contains(t, view, "Score: 0/0")
}

func TestDrillGradesAnswer(t *testing.T) {
	model, _ := newTestDrill(t)

	correct := string(model.question.Answer)
	model = typeAnswer(model, correct)

	require.Equal(t, 1, model.answered)
	require.Equal(t, 1, model.correct)
	require.Contains(t, model.feedback, "Correct")
}

func TestDrillGradesWrongAnswer(t *testing.T) {
	model, _ := newTestDrill(t)

	// Answer with whichever action the table does not prefer.
	wrong := "fold"
	if model.question.Answer == gto.ActionFold {
		wrong = "push"
		if model.question.Situation.Position == "BB" {
			wrong = "call"
		}
	}
	// Only a real mistake should count against the score; in an evenly
	// mixed spot either action is accepted.
	freqs := model.question.Frequencies
	if freqs[gto.Action(wrong)] >= freqs[model.question.Answer] {
		t.Skipf("question %v is mixed, no wrong answer exists", model.question.Situation)
	}

	model = typeAnswer(model, wrong)
	require.Equal(t, 1, model.answered)
	require.Equal(t, 0, model.correct)
	require.Contains(t, model.feedback, "No:")
}

func TestDrillAdvancesToNextQuestion(t *testing.T) {
	model, _ := newTestDrill(t)
	first := model.question.Situation

	model = typeAnswer(model, string(model.question.Answer))
	model = typeAnswer(model, string(model.question.Answer))
	model = typeAnswer(model, string(model.question.Answer))

	require.Equal(t, 3, model.answered)
	// Three draws from the question space are overwhelmingly unlikely
	// to repeat the same situation every time.
	if model.question.Situation == first {
		model = typeAnswer(model, string(model.question.Answer))
		require.NotEqual(t, first, model.question.Situation)
	}
}

func TestDrillQuestionSequenceIsSeeded(t *testing.T) {
	a, _ := newTestDrill(t)
	b, _ := newTestDrill(t)

	for i := 0; i < 10; i++ {
		require.Equal(t, a.question.Situation, b.question.Situation, "question %d diverged", i)
		a = typeAnswer(a, "fold")
		b = typeAnswer(b, "fold")
	}
}

func TestDrillSummaryUsesInjectedClock(t *testing.T) {
	model, clock := newTestDrill(t)

	model = typeAnswer(model, string(model.question.Answer))
	clock.Advance(90 * time.Second)
	model = typeAnswer(model, string(model.question.Answer))

	summary := model.Summary()
	require.Equal(t, 2, summary.Answered)
	require.Equal(t, 2, summary.Correct)
	require.Equal(t, 90*time.Second, summary.Duration)
}

func TestDrillQuit(t *testing.T) {
	model, _ := newTestDrill(t)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(*DrillModel)
	require.True(t, model.quitting)
	require.NotNil(t, cmd)
	require.Equal(t, "", model.View())
}

func TestDrillIgnoresEmptyAnswer(t *testing.T) {
	model, _ := newTestDrill(t)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(*DrillModel)
	require.Equal(t, 0, model.answered)
	require.False(t, strings.Contains(model.View(), "Correct"))
}
