package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Category      lipgloss.Style
	Prompt        lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Scroll        lipgloss.Style
	SelectionBg   lipgloss.Style
	Name          lipgloss.Style
	Identity      lipgloss.Style
	Version       lipgloss.Style
	PreRelease    lipgloss.Style
	Downloads     lipgloss.Style
	Rating        lipgloss.Style
	Age           lipgloss.Style
	StatusError   lipgloss.Style
	StatusLoading lipgloss.Style
	DetailsLabel  lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Category: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Dim:      lipgloss.NewStyle().Faint(true),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Help:     lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Scroll:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Name:          lipgloss.NewStyle().Bold(true),
		Identity:      lipgloss.NewStyle().Foreground(lipgloss.Color("33")), // blue
		Version:       lipgloss.NewStyle().Foreground(lipgloss.Color("78")), // green
		PreRelease:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Downloads:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Rating:        lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Age:           lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		DetailsLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Width(12),
	}
}
