package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/foxxcyber/compwatch/internal/setup"
)

// PickerAction is what the user asked for when the picker exited
type PickerAction int

const (
	ActionNone PickerAction = iota
	ActionCommit
	ActionEdit
	ActionAdd
	ActionAbort
)

// Picker is the interactive selection screen. Toggling and removing edit the
// Selection directly; edit, add and commit exit the program so the caller can
// prompt for fields or move on.
type Picker struct {
	sel    *setup.Selection
	styles Styles
	cursor int
	action PickerAction
	status string
}

func NewPicker(sel *setup.Selection, styles Styles) *Picker {
	return &Picker{sel: sel, styles: styles}
}

// Reset clears the last action so the picker can be run again
func (m *Picker) Reset(status string) {
	m.action = ActionNone
	m.status = status
	if m.cursor >= m.sel.Len() {
		m.cursor = max(m.sel.Len()-1, 0)
	}
}

func (m *Picker) Action() PickerAction { return m.action }
func (m *Picker) Cursor() int          { return m.cursor }

func (m *Picker) Init() tea.Cmd { return nil }

func (m *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.status = ""
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.sel.Len()-1 {
			m.cursor++
		}
	case " ", "x":
		if c, err := m.sel.Edit(m.cursor); err == nil {
			_ = m.sel.Toggle(m.cursor, !c.Selected)
		}
	case "d", "delete":
		_ = m.sel.Remove(m.cursor)
	case "e":
		if m.sel.Len() > 0 {
			return m.exit(ActionEdit)
		}
	case "a":
		return m.exit(ActionAdd)
	case "enter":
		if m.sel.SelectedCount() == 0 {
			m.status = setup.ErrNothingSelected.Error()
			return m, nil
		}
		return m.exit(ActionCommit)
	case "q", "esc", "ctrl+c":
		return m.exit(ActionAbort)
	}
	return m, nil
}

func (m *Picker) exit(a PickerAction) (tea.Model, tea.Cmd) {
	m.action = a
	return m, tea.Quit
}

func (m *Picker) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Competitors (%d of %d selected)", m.sel.SelectedCount(), m.sel.Len())))
	b.WriteString("\n")

	for i, c := range m.sel.Items() {
		pointer := "  "
		if i == m.cursor {
			pointer = m.styles.Info.Render("> ")
		}
		line := fmt.Sprintf("%s %s", check(c.Selected), c.Name)
		if c.Distance != nil {
			line += m.styles.Muted.Render(fmt.Sprintf("  %.1f km", *c.Distance))
		}
		if c.IsManual() {
			line += m.styles.Muted.Render("  (manual)")
		}
		b.WriteString(pointer + line + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.styles.Warning.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("space toggle · d remove · e edit · a add · enter commit · q quit") + "\n")
	return b.String()
}
