package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mhartley/tally/internal/compose"
	"github.com/mhartley/tally/internal/model"
)

// formFieldOrder is the on-screen ordering of entry fields. Fields hidden by
// the active mode are skipped when the form is (re)built.
var formFieldOrder = []string{
	compose.FieldDate,
	compose.FieldAmount,
	compose.FieldCurrency,
	compose.FieldAccount,
	compose.FieldSource,
	compose.FieldDestination,
	compose.FieldCategory,
	compose.FieldMerchant,
	compose.FieldPaymentMethod,
	compose.FieldStatus,
	compose.FieldDescription,
	compose.FieldReference,
}

var fieldLabels = map[string]string{
	compose.FieldDate:          "Date",
	compose.FieldAmount:        "Amount",
	compose.FieldCurrency:      "Currency",
	compose.FieldAccount:       "Account",
	compose.FieldSource:        "From account",
	compose.FieldDestination:   "To account",
	compose.FieldCategory:      "Category",
	compose.FieldMerchant:      "Merchant",
	compose.FieldPaymentMethod: "Payment method",
	compose.FieldStatus:        "Status",
	compose.FieldDescription:   "Description",
	compose.FieldReference:     "Reference",
}

// FormModel is the entry form. It owns no validation or submission rules of
// its own; everything flows through the composer.
type FormModel struct {
	composer *compose.Composer
	keymap   KeyMap
	theme    Theme

	fields []string
	inputs []textinput.Model
	focus  int

	errs       compose.FieldErrors
	notice     string
	submitting bool
	width      int
}

// NewFormModel builds the form for the composer's current draft.
func NewFormModel(composer *compose.Composer, keymap KeyMap, theme Theme) FormModel {
	m := FormModel{
		composer: composer,
		keymap:   keymap,
		theme:    theme,
	}
	m.rebuild()
	return m
}

// Mode returns the active entry mode.
func (m FormModel) Mode() model.EntryMode {
	return m.composer.Draft().Mode
}

// rebuild recreates the inputs from the composer's draft, so a mode switch
// shows exactly the fields the new mode allows with preserved values.
func (m *FormModel) rebuild() {
	draft := m.composer.Draft()
	hidden := compose.HiddenFields(draft.Mode)

	m.fields = m.fields[:0]
	m.inputs = m.inputs[:0]
	for _, field := range formFieldOrder {
		if hidden.Has(field) {
			continue
		}
		input := textinput.New()
		input.Placeholder = fieldLabels[field]
		input.CharLimit = 120
		input.SetValue(draftValue(draft, field))
		m.fields = append(m.fields, field)
		m.inputs = append(m.inputs, input)
	}

	if m.focus >= len(m.inputs) {
		m.focus = 0
	}
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// Update handles form messages.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.notice = ""
			var fieldErrs compose.FieldErrors
			if errors.As(msg.err, &fieldErrs) {
				m.errs = fieldErrs
			} else {
				m.notice = msg.err.Error()
			}
			return m, nil
		}
		m.errs = nil
		m.notice = "Entry recorded."
		m.focus = 0
		m.rebuild()
		return m, textinput.Blink

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.CycleMode):
			m.syncFocusedField()
			if err := m.composer.SetMode(nextMode(m.Mode())); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.errs = nil
			m.notice = ""
			m.rebuild()
			return m, textinput.Blink

		case key.Matches(msg, m.keymap.NextField):
			m.syncFocusedField()
			m.focus = (m.focus + 1) % len(m.inputs)
			m.refocus()
			return m, textinput.Blink

		case key.Matches(msg, m.keymap.PrevField):
			m.syncFocusedField()
			m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
			m.refocus()
			return m, textinput.Blink

		case key.Matches(msg, m.keymap.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit pushes the current inputs through validation and, when the draft is
// clean, fires the network submit as a command.
func (m FormModel) submit() (FormModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.syncAllFields()

	if errs := m.composer.Validate(); len(errs) > 0 {
		m.errs = errs
		m.notice = ""
		return m, nil
	}

	m.errs = nil
	m.notice = "Submitting…"
	m.submitting = true
	composer := m.composer
	return m, func() tea.Msg {
		return submitDoneMsg{err: composer.Submit(context.Background())}
	}
}

func (m *FormModel) syncFocusedField() {
	if m.focus < len(m.fields) {
		_ = m.composer.SetField(m.fields[m.focus], m.inputs[m.focus].Value())
	}
}

func (m *FormModel) syncAllFields() {
	for i, field := range m.fields {
		_ = m.composer.SetField(field, m.inputs[i].Value())
	}
}

func (m *FormModel) refocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// View renders the form.
func (m FormModel) View() string {
	var b strings.Builder

	var tabs []string
	for _, mode := range model.Modes() {
		label := string(mode)
		if mode == m.Mode() {
			tabs = append(tabs, m.theme.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.theme.InactiveTab.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, field := range m.fields {
		if n := len(fieldLabels[field]); n > labelWidth {
			labelWidth = n
		}
	}

	for i, field := range m.fields {
		label := fmt.Sprintf("%-*s", labelWidth, fieldLabels[field])
		if i == m.focus {
			label = m.theme.FocusedLabel.Render(label)
		} else {
			label = m.theme.Label.Render(label)
		}
		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := m.errs[field]; ok {
			b.WriteString(m.theme.FieldError.Render(strings.Repeat(" ", labelWidth+1) + msg))
			b.WriteString("\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Notice.Render(m.notice))
		b.WriteString("\n")
	}

	return b.String()
}

// nextMode cycles through the entry modes in display order.
func nextMode(mode model.EntryMode) model.EntryMode {
	modes := model.Modes()
	for i, candidate := range modes {
		if candidate == mode {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// draftValue maps a matrix field to its draft value for display.
func draftValue(d compose.Draft, field string) string {
	switch field {
	case compose.FieldDate:
		return d.Date
	case compose.FieldAmount:
		return d.Amount
	case compose.FieldCurrency:
		return d.CurrencyCode
	case compose.FieldAccount:
		return d.AccountID
	case compose.FieldSource:
		return d.SourceAccountID
	case compose.FieldDestination:
		return d.DestinationAccountID
	case compose.FieldCategory:
		return d.CategoryID
	case compose.FieldMerchant:
		return d.MerchantID
	case compose.FieldPaymentMethod:
		return d.PaymentMethodID
	case compose.FieldStatus:
		return string(d.Status)
	case compose.FieldDescription:
		return d.Description
	case compose.FieldReference:
		return d.ReferenceNumber
	default:
		return ""
	}
}
