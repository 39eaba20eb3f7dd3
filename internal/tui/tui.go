package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/riddler/internal/game"
	"github.com/robalobadob/riddler/internal/session"
)

// OutcomeDelay is how long the finished board stays up before the outcome is announced.
const OutcomeDelay = 50 * time.Millisecond

const (
	wonText  = "Congratulations! You found the answer."
	lostText = "You lost! The answer was %s."
)

type keyMap struct {
	Reset key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Reset, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Reset: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "new riddle")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	riddleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Italic(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			Padding(0, 1)

	wrongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	outcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87D787")).
			Bold(true)
)

// outcomeMsg announces the end of round seq once OutcomeDelay has passed.
type outcomeMsg struct {
	seq int
}

// Model is the Bubble Tea model for one player's session.
type Model struct {
	sess  *session.Session
	round game.Round
	last  game.Result

	// seq counts rounds so a late outcomeMsg from a replaced round is dropped.
	seq     int
	outcome string
	err     error

	keys keyMap
	help help.Model
}

// NewModel wraps sess, showing its current round.
func NewModel(sess *session.Session) Model {
	return Model{
		sess:  sess,
		round: sess.Round(),
		keys:  keys,
		help:  help.New(),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			return m.newRound(), nil
		}
		// Once the outcome is shown, any key starts the next riddle.
		if m.outcome != "" {
			return m.newRound(), nil
		}
		round, res := m.sess.Submit(keyText(msg))
		m.round, m.last = round, res
		if res.Kind.Changed() && round.Finished() {
			seq := m.seq
			return m, tea.Tick(OutcomeDelay, func(time.Time) tea.Msg { return outcomeMsg{seq: seq} })
		}
		return m, nil

	case outcomeMsg:
		if msg.seq == m.seq && m.round.Finished() {
			m.outcome = Outcome(m.round)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

// keyText turns a key press into the raw text handed to the engine.
func keyText(msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes && !msg.Alt {
		return string(msg.Runes)
	}
	return msg.String()
}

func (m Model) newRound() Model {
	round, err := m.sess.Reset()
	if err != nil {
		m.err = err
		return m
	}
	m.seq++
	m.round = round
	m.last = game.Result{}
	m.outcome = ""
	m.err = nil
	return m
}

// Outcome is the announcement for a finished round, or "" while it is in progress.
func Outcome(r game.Round) string {
	switch r.Status() {
	case game.Won:
		return wonText
	case game.Lost:
		return fmt.Sprintf(lostText, r.Answer())
	}
	return ""
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("RIDDLER") + "\n\n")
	b.WriteString(riddleStyle.Render(m.round.Prompt()) + "\n\n")
	b.WriteString(answerStyle.Render(spaced(m.round.Revealed())) + "\n\n")

	wrong := strings.Join(m.round.WrongLetters(), " ")
	if wrong == "" {
		wrong = "-"
	}
	b.WriteString(stateStyle.Render(fmt.Sprintf(
		"Wrong: %s\nGuesses left: %d",
		wrongStyle.Render(wrong), m.round.Remaining(),
	)) + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(fmt.Sprintf("Error: %v\n\n", m.err))
	case m.outcome != "":
		b.WriteString(outcomeStyle.Render(m.outcome) + "\n")
		b.WriteString("Press any key for the next riddle.\n\n")
	}

	b.WriteString(m.help.View(m.keys))
	return "\n" + b.String() + "\n"
}

// spaced puts a blank between letters so placeholders stay readable.
func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

// Run starts the program on sess and blocks until the player quits.
func Run(sess *session.Session) error {
	p := tea.NewProgram(NewModel(sess), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
