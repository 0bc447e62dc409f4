package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type confirmKeyMap struct {
	Yes  key.Binding
	No   key.Binding
	Quit key.Binding
}

var confirmKeys = confirmKeyMap{
	Yes:  key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "continue")),
	No:   key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "abort")),
	Quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel")),
}

// confirmModel is a single-keypress yes/no question.
type confirmModel struct {
	question string
	keys     confirmKeyMap
	answered bool
	accepted bool
	aborted  bool
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question, keys: confirmKeys}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Yes):
		m.answered, m.accepted = true, true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.No):
		m.answered, m.accepted = true, false
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	prompt := fmt.Sprintf("\n%s (y/n): ", m.question)
	switch {
	case m.aborted:
		return prompt + "cancelled\n"
	case m.answered && m.accepted:
		return prompt + "y\n"
	case m.answered:
		return prompt + "n\n"
	}
	return prompt
}

// TeaPrompter asks the question with a bubbletea program reading raw
// keypresses from In.
type TeaPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p TeaPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	prog := tea.NewProgram(
		newConfirmModel(question),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
		tea.WithContext(ctx),
	)
	final, err := prog.Run()
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	m, ok := final.(confirmModel)
	if !ok || m.aborted || !m.answered {
		return false, ErrPromptAborted
	}
	return m.accepted, nil
}
