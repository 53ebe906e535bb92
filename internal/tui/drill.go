// Package tui implements the interactive push/fold drill.
package tui

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertrainer/analysis"
	"github.com/lox/pokertrainer/gto"
	"github.com/lox/pokertrainer/internal/randutil"
)

// drilled stack depths, matching the built-in push/fold charts.
var drillDepths = []int{5, 8, 10, 15}

// Question is one drill prompt: a situation the player must answer.
type Question struct {
	Situation gto.Situation
	// Answer is the action with the highest table frequency.
	Answer gto.Action
	// Frequencies from the strategy table, shown after answering.
	Frequencies gto.Frequencies
}

// Summary captures a finished drill session.
type Summary struct {
	Answered int
	Correct  int
	Duration time.Duration
}

// DrillModel is the Bubble Tea model for the push/fold drill. Questions
// come from the served strategy table, so a hot-swapped table changes
// the drill without a restart. The clock is injected so tests control
// session timing.
type DrillModel struct {
	store  *gto.Store
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand

	answerInput textinput.Model

	question  Question
	feedback  string
	started   time.Time
	answered  int
	correct   int
	quitting  bool
	loadError error

	width  int
	height int
}

// NewDrillModel creates a drill over the given strategy table store.
// The seed fixes the question sequence.
func NewDrillModel(store *gto.Store, logger *log.Logger, clock quartz.Clock, seed int64) *DrillModel {
	ti := textinput.New()
	ti.Placeholder = "push, call or fold"
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &DrillModel{
		store:       store,
		logger:      logger.WithPrefix("drill"),
		clock:       clock,
		rng:         randutil.New(seed),
		answerInput: ti,
		started:     clock.Now(),
	}
	m.nextQuestion()
	return m
}

// Init initializes the drill model
func (m *DrillModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the drill
func (m *DrillModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			answer := strings.TrimSpace(strings.ToLower(m.answerInput.Value()))
			m.answerInput.SetValue("")
			if answer == "quit" {
				m.quitting = true
				return m, tea.Sequence(tea.ClearScreen, tea.Quit)
			}
			if answer != "" {
				m.grade(gto.Action(answer))
				m.nextQuestion()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.answerInput, cmd = m.answerInput.Update(msg)
	return m, cmd
}

// View renders the drill
func (m *DrillModel) View() string {
	if m.quitting {
		return ""
	}
	if m.loadError != nil {
		return IncorrectStyle.Render(fmt.Sprintf("drill unavailable: %v", m.loadError)) + "\n"
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" Push/Fold Drill ") + "\n\n")

	sit := m.question.Situation
	b.WriteString(QuestionStyle.Render(fmt.Sprintf("%s, %dbb effective, facing %s", sit.Position, sit.StackBB, sit.Facing)))
	b.WriteString("\n")
	b.WriteString(QuestionStyle.Render("You hold ") + HandStyle.Render(sit.HandClass))
	b.WriteString("\n\n")

	if m.feedback != "" {
		b.WriteString(m.feedback + "\n\n")
	}

	b.WriteString(m.answerInput.View() + "\n\n")
	b.WriteString(ScoreStyle.Render(fmt.Sprintf("Score: %d/%d", m.correct, m.answered)))
	b.WriteString(InfoStyle.Render("  (enter to answer, esc to quit)") + "\n")

	return b.String()
}

// Summary reports the session outcome using the injected clock.
func (m *DrillModel) Summary() Summary {
	return Summary{
		Answered: m.answered,
		Correct:  m.correct,
		Duration: m.clock.Since(m.started),
	}
}

// grade scores an answer against the table frequencies. An answer is
// accepted when no other action is taken more often, so either side of
// an evenly mixed spot counts.
func (m *DrillModel) grade(answer gto.Action) {
	m.answered++

	freqs := m.question.Frequencies
	best := freqs[m.question.Answer]
	if freqs[answer] >= best {
		m.correct++
		m.feedback = CorrectStyle.Render("Correct!") + " " + m.describeFrequencies()
		return
	}
	m.feedback = IncorrectStyle.Render(fmt.Sprintf("No: %s.", m.question.Answer)) + " " + m.describeFrequencies()
}

func (m *DrillModel) describeFrequencies() string {
	parts := make([]string, 0, len(m.question.Frequencies))
	for _, action := range []gto.Action{gto.ActionPush, gto.ActionCall, gto.ActionFold} {
		if freq, ok := m.question.Frequencies[action]; ok {
			parts = append(parts, fmt.Sprintf("%s %.0f%%", action, freq*100))
		}
	}
	return InfoStyle.Render(strings.Join(parts, ", "))
}

// nextQuestion draws a random situation from the drill space.
func (m *DrillModel) nextQuestion() {
	classes := analysis.AllClasses()
	sit := gto.Situation{
		Street:    gto.Preflop,
		StackBB:   drillDepths[m.rng.IntN(len(drillDepths))],
		HandClass: classes[m.rng.IntN(len(classes))],
	}
	if m.rng.IntN(2) == 0 {
		sit.Position = "SB"
		sit.Facing = "unopened"
	} else {
		sit.Position = "BB"
		sit.Facing = "push"
	}

	freqs, err := m.store.Lookup(sit)
	if err != nil {
		m.logger.Error("Failed to look up drill situation", "error", err)
		m.loadError = err
		return
	}

	best := gto.ActionFold
	for action, freq := range freqs {
		if freq > freqs[best] {
			best = action
		}
	}

	m.question = Question{Situation: sit, Answer: best, Frequencies: freqs}
}
