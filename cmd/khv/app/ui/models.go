// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stacklok/kernelhive/pkg/prompt"
)

const (
	keyCtrlC = "ctrl+c"
	keyEsc   = "esc"
	keyEnter = "enter"
	keyUp    = "up"
	keyDown  = "down"
	keyK     = "k"
	keyJ     = "j"
)

var (
	docStyle          = lipgloss.NewStyle().Margin(1, 2)
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	descriptionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type inputModel struct {
	opts   prompt.InputOptions
	input  textinput.Model
	action prompt.Action
	done   bool
}

func newInputModel(opts prompt.InputOptions) *inputModel {
	input := textinput.New()
	input.Placeholder = opts.Placeholder
	input.Width = 60
	input.SetValue(opts.Value)
	if opts.Password {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	input.Focus()
	return &inputModel{opts: opts, input: input, action: prompt.ActionDismissed}
}

func (*inputModel) Init() tea.Cmd { return textinput.Blink }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyCtrlC:
			return m.finish(prompt.ActionDismissed)
		case keyEsc:
			return m.finish(leave(m.opts.AllowBack))
		case keyEnter:
			return m.finish(prompt.ActionAccepted)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inputModel) finish(action prompt.Action) (tea.Model, tea.Cmd) {
	m.action = action
	m.done = true
	return m, tea.Quit
}

func (m *inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(titleStyle.Render(m.opts.Title) + "\n")
	}
	if m.opts.Prompt != "" {
		b.WriteString(m.opts.Prompt + "\n")
	}
	b.WriteString("\n" + m.input.View() + "\n")
	if m.opts.ValidationMessage != "" {
		b.WriteString(errorStyle.Render(m.opts.ValidationMessage) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(helpText("'enter' to confirm", m.opts.AllowBack)))
	return docStyle.Render(b.String())
}

type pickModel struct {
	opts   prompt.PickOptions
	cursor int
	action prompt.Action
	done   bool
}

func newPickModel(opts prompt.PickOptions) *pickModel {
	return &pickModel{opts: opts, action: prompt.ActionDismissed}
}

func (*pickModel) Init() tea.Cmd { return nil }

func (m *pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case keyCtrlC, "q":
		return m.finish(prompt.ActionDismissed)
	case keyEsc:
		return m.finish(leave(m.opts.AllowBack))
	case keyUp, keyK:
		if m.cursor > 0 {
			m.cursor--
		}
	case keyDown, keyJ:
		if m.cursor < len(m.opts.Items)-1 {
			m.cursor++
		}
	case keyEnter:
		return m.finish(prompt.ActionAccepted)
	}
	return m, nil
}

func (m *pickModel) finish(action prompt.Action) (tea.Model, tea.Cmd) {
	m.action = action
	m.done = true
	return m, tea.Quit
}

func (m *pickModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(titleStyle.Render(m.opts.Title) + "\n")
	}
	if m.opts.Placeholder != "" {
		b.WriteString(m.opts.Placeholder + "\n")
	}
	b.WriteString("\n")
	for i, item := range m.opts.Items {
		row := "  " + item.Label
		style := itemStyle
		if i == m.cursor {
			row = "> " + item.Label
			style = selectedItemStyle
		}
		if item.Description != "" {
			row += " " + descriptionStyle.Render(item.Description)
		}
		b.WriteString(style.Render(row) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(helpText("↑/↓ (or j/k) to move, 'enter' to select", m.opts.AllowBack)))
	return docStyle.Render(b.String())
}

func helpText(actions string, allowBack bool) string {
	if allowBack {
		return actions + ", 'esc' to go back, 'ctrl+c' to cancel."
	}
	return actions + ", 'esc' to cancel."
}
