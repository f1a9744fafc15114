// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orderdesk/internal/ui/styles"
)

// =============================================================================
// FORM
// =============================================================================

// FieldSpec describes one form field.
type FieldSpec struct {
	// Name is the key used by Values and SetErrors.
	Name        string
	Label       string
	Placeholder string
	Secret      bool
	CharLimit   int
}

type field struct {
	spec  FieldSpec
	input textinput.Model
}

// FormSubmitMsg is emitted when the user submits a form.
type FormSubmitMsg struct {
	ID     string
	Values map[string]string
}

// Form is a vertical list of text inputs with per-field errors.
// Tab and the arrow keys move focus; enter on the last field submits.
type Form struct {
	ID        string
	Title     string
	fields    []field
	focus     int
	errors    map[string]string
	formError string
	disabled  bool
	width     int
	theme     *styles.Theme
}

// NewForm creates a form with focus on the first field.
func NewForm(theme *styles.Theme, id, title string, specs ...FieldSpec) *Form {
	f := &Form{ID: id, Title: title, errors: map[string]string{}, width: 48, theme: theme}
	for _, spec := range specs {
		ti := textinput.New()
		ti.Placeholder = spec.Placeholder
		ti.CharLimit = spec.CharLimit
		if ti.CharLimit == 0 {
			ti.CharLimit = 128
		}
		if spec.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		ti.Prompt = "> "
		ti.PromptStyle = theme.FieldFocused
		ti.PlaceholderStyle = theme.Muted
		ti.Width = f.width - 6
		f.fields = append(f.fields, field{spec: spec, input: ti})
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// Focus returns the blink command for the focused input.
func (f *Form) Focus() tea.Cmd {
	return textinput.Blink
}

// SetWidth sets the form width.
func (f *Form) SetWidth(width int) {
	if width > 64 {
		width = 64
	}
	if width < 30 {
		width = 30
	}
	f.width = width
	for i := range f.fields {
		f.fields[i].input.Width = width - 6
	}
}

// SetDisabled blocks input while a request is in flight.
func (f *Form) SetDisabled(disabled bool) {
	f.disabled = disabled
}

// Disabled reports whether input is blocked.
func (f *Form) Disabled() bool {
	return f.disabled
}

// Value returns the raw value of a field.
func (f *Form) Value(name string) string {
	for _, fl := range f.fields {
		if fl.spec.Name == name {
			return fl.input.Value()
		}
	}
	return ""
}

// SetValue sets the value of a field.
func (f *Form) SetValue(name, value string) {
	for i := range f.fields {
		if f.fields[i].spec.Name == name {
			f.fields[i].input.SetValue(value)
		}
	}
}

// Values returns every field's raw value by name.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fl := range f.fields {
		out[fl.spec.Name] = fl.input.Value()
	}
	return out
}

// SetErrors replaces the field errors. A "form" entry is shown above the fields.
func (f *Form) SetErrors(errs map[string]string) {
	f.errors = map[string]string{}
	f.formError = ""
	for k, v := range errs {
		if k == "form" {
			f.formError = v
			continue
		}
		f.errors[k] = v
	}
}

// SetFormError shows a message that belongs to no single field.
func (f *Form) SetFormError(msg string) {
	f.formError = msg
}

// Errors returns the current field errors.
func (f *Form) Errors() map[string]string {
	return f.errors
}

// FormError returns the form-level message.
func (f *Form) FormError() string {
	return f.formError
}

// Reset clears values and errors and focuses the first field.
func (f *Form) Reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
	f.errors = map[string]string{}
	f.formError = ""
	f.disabled = false
	f.setFocus(0)
}

// Focused returns the name of the focused field.
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focus].spec.Name
}

// FocusField moves focus to the named field and returns its blink command.
// Unknown names leave focus where it is.
func (f *Form) FocusField(name string) tea.Cmd {
	for i := range f.fields {
		if f.fields[i].spec.Name == name {
			f.setFocus(i)
			return f.Focus()
		}
	}
	return nil
}

func (f *Form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Blur()
	f.focus = i
	f.fields[f.focus].input.Focus()
}

// Update handles navigation, editing and submission.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if f.disabled || len(f.fields) == 0 {
		return nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return nil
		case "enter":
			if f.focus < len(f.fields)-1 {
				f.setFocus(f.focus + 1)
				return nil
			}
			values := f.Values()
			id := f.ID
			return func() tea.Msg { return FormSubmitMsg{ID: id, Values: values} }
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// View renders the form in a bordered box.
func (f *Form) View() string {
	t := f.theme
	var b strings.Builder
	b.WriteString(t.Title.Render(f.Title))
	b.WriteString("\n")
	if f.formError != "" {
		b.WriteString(t.ErrorStyle.Render(styles.StatusIndicators.Error+" "+f.formError) + "\n\n")
	}
	for i, fl := range f.fields {
		label := t.FieldLabel.Render(fl.spec.Label)
		if i == f.focus {
			label = t.FieldFocused.Render(fl.spec.Label)
		}
		b.WriteString(label + "\n")
		b.WriteString(fl.input.View() + "\n")
		if msg := f.errors[fl.spec.Name]; msg != "" {
			b.WriteString(t.FieldError.Render("  "+msg) + "\n")
		}
		b.WriteString("\n")
	}
	hint := "tab next  shift+tab back  enter submit"
	if f.disabled {
		hint = "submitting..."
	}
	b.WriteString(t.Muted.Render(hint))
	return t.FormBox.Width(f.width).Render(b.String())
}
