// Package interactive holds the operator prompts of the CLI.
package interactive

import (
	"errors"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrCanceled is returned when the operator interrupts a prompt.
var ErrCanceled = errors.New("prompt canceled")

// Prompter abstracts interactive prompt operations for testing.
type Prompter interface {
	// Confirm asks a yes/no question. A "no" answer is (false, nil).
	Confirm(label string) (bool, error)

	// SelectFromList displays a list and returns the selected index.
	SelectFromList(label string, items []string) (int, error)
}

// PromptuiPrompter implements Prompter using promptui.
type PromptuiPrompter struct{}

// NewPromptuiPrompter creates the production prompter.
func NewPromptuiPrompter() *PromptuiPrompter {
	return &PromptuiPrompter{}
}

// Confirm implements Prompter.Confirm.
func (p *PromptuiPrompter) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, ErrCanceled
	default:
		return false, err
	}
}

// SelectFromList implements Prompter.SelectFromList.
func (p *PromptuiPrompter) SelectFromList(label string, items []string) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "✓ {{ . | green }}",
	}
	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      len(items),
	}
	index, _, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return 0, ErrCanceled
		}
		return 0, err
	}
	return index, nil
}

// IsInteractive returns true if stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
