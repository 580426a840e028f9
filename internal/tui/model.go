// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lingua/internal/eval"
	"github.com/verte-zerg/lingua/internal/model"
	"github.com/verte-zerg/lingua/internal/scheduler"
	statsPkg "github.com/verte-zerg/lingua/internal/stats"
	"github.com/verte-zerg/lingua/internal/tracker"
)

// AnswerLog records answers and reports per-scope totals. A nil log keeps
// totals in memory only.
type AnswerLog interface {
	InsertAnswer(ctx context.Context, a model.Answer) (int64, error)
	ScopeTotals(ctx context.Context, scope string) (model.Totals, error)
	DeleteAnswers(ctx context.Context, scope string) error
}

// Params wires the drill screen to the engine.
type Params struct {
	DeckName    string
	Direction   string
	AnswerLabel string
	Items       []model.PracticeItem
	Tracker     *tracker.Tracker
	Scheduler   *scheduler.Scheduler
	Log         AnswerLog
	RunID       string
	Mode        eval.Mode
	OptionCount int
	Now         func() time.Time
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	p Params

	width  int
	height int

	item    model.PracticeItem
	options []string
	input   textinput.Model

	done    bool
	given   string
	verdict eval.Verdict
	errMsg  string
	// status holds the latest storage warning; stderr belongs to the alt screen.
	status string

	totals model.Totals
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	optionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	chosenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle    = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// NewModel constructs a drill TUI model and draws the first question.
func NewModel(p Params) *Model {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.OptionCount < 2 {
		p.OptionCount = 4
	}
	if p.Mode == "" {
		p.Mode = eval.ModeChoice
	}
	in := textinput.New()
	in.Placeholder = "Type here..."
	in.CharLimit = 128
	m := &Model{p: p, input: in}
	m.loadTotals()
	m.nextQuestion()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.reset()
			return m, nil
		case tea.KeyTab:
			m.toggleMode()
			return m, nil
		}
		if m.done {
			if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
				m.nextQuestion()
			}
			return m, nil
		}
		if m.p.Mode == eval.ModeChoice {
			m.handleChoiceKey(msg)
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			m.submit(m.input.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Translate to %s", m.p.AnswerLabel)))
	b.WriteString("\n\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	} else {
		b.WriteString(promptStyle.Render(m.item.Prompt))
		b.WriteString("\n\n")
		b.WriteString(m.renderAnswerArea())
		if fb := m.renderFeedback(); fb != "" {
			b.WriteString("\n\n")
			b.WriteString(fb)
		}
	}
	content := cardStyle.Render(b.String())
	if m.status != "" {
		content += "\n" + hintStyle.Render(m.status)
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderAnswerArea() string {
	if m.p.Mode == eval.ModeWrite {
		return m.input.View()
	}
	lines := make([]string, 0, len(m.options))
	for i, opt := range m.options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		style := optionStyle
		if m.done {
			switch {
			case eval.ExactMatch(opt, m.item.Expected):
				style = answerStyle
			case opt == m.given:
				style = chosenStyle
			}
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFeedback() string {
	if !m.done {
		return ""
	}
	var out string
	if m.verdict.Correct {
		out = correctStyle.Render("✓ Correct")
	} else {
		out = wrongStyle.Render("✗ Correct: " + m.item.Expected)
	}
	if m.verdict.Hint != "" {
		out += " " + hintStyle.Render(m.verdict.Hint)
	}
	return out
}

func (m *Model) renderFooter() string {
	acc := statsPkg.Accuracy(m.totals.Correct, m.totals.Total)
	segments := []string{
		fmt.Sprintf("%s · %s · %s", m.p.DeckName, m.p.Direction, m.p.Mode),
		fmt.Sprintf("Items %d", len(m.p.Items)),
		fmt.Sprintf("Total %d", m.totals.Total),
		fmt.Sprintf("Accuracy %.0f%%", acc*100),
		"tab mode · ctrl+r reset · esc quit",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) handleChoiceKey(msg tea.KeyMsg) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return
	}
	idx, err := strconv.Atoi(string(msg.Runes[0]))
	if err != nil || idx < 1 || idx > len(m.options) {
		return
	}
	m.submit(m.options[idx-1])
}

func (m *Model) submit(given string) {
	if m.done || m.errMsg != "" {
		return
	}
	m.given = given
	m.verdict = eval.Evaluate(m.p.Mode, given, m.item.Expected)
	m.done = true
	m.input.Blur()

	m.p.Tracker.RecordOutcome(m.item.ID, m.verdict.Correct)
	m.totals.Total++
	if m.verdict.Correct {
		m.totals.Correct++
	}
	if m.p.Log == nil {
		return
	}
	answer := model.Answer{
		RunID:      m.p.RunID,
		Scope:      m.p.Tracker.Scope(),
		ItemID:     m.item.ID,
		Mode:       string(m.p.Mode),
		Given:      given,
		Correct:    m.verdict.Correct,
		AnsweredAt: m.p.Now(),
	}
	if _, err := m.p.Log.InsertAnswer(context.Background(), answer); err != nil {
		m.warnf("failed to save answer: %v", err)
	}
}

func (m *Model) nextQuestion() {
	item, err := m.p.Scheduler.PickNext(m.p.Items, m.p.Tracker.State())
	if err != nil {
		m.errMsg = fmt.Sprintf("no items to practice: %v", err)
		return
	}
	m.errMsg = ""
	m.item = item
	m.done = false
	m.given = ""
	m.verdict = eval.Verdict{}
	m.options = nil
	if m.p.Mode == eval.ModeChoice {
		expected := func(it model.PracticeItem) string { return it.Expected }
		m.options = m.p.Scheduler.Options(m.p.Items, item.Expected, expected, m.p.OptionCount)
		m.input.Blur()
		return
	}
	m.input.Reset()
	m.input.Focus()
}

func (m *Model) toggleMode() {
	if m.p.Mode == eval.ModeChoice {
		m.p.Mode = eval.ModeWrite
	} else {
		m.p.Mode = eval.ModeChoice
	}
	m.nextQuestion()
}

func (m *Model) reset() {
	m.p.Tracker.Clear()
	m.totals = model.Totals{}
	if m.p.Log != nil {
		if err := m.p.Log.DeleteAnswers(context.Background(), m.p.Tracker.Scope()); err != nil {
			m.warnf("failed to reset answers: %v", err)
		}
	}
	m.nextQuestion()
}

func (m *Model) loadTotals() {
	if m.p.Log == nil {
		return
	}
	totals, err := m.p.Log.ScopeTotals(context.Background(), m.p.Tracker.Scope())
	if err != nil {
		m.warnf("failed to load totals: %v", err)
		return
	}
	m.totals = totals
}

func (m *Model) warnf(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}
