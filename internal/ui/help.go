package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	keys KeyMap
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer(keys KeyMap) *HelpRenderer {
	return &HelpRenderer{keys: keys}
}

// RenderHelpContent generates the help page shown in the pager
func (r *HelpRenderer) RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder

	help.WriteString(titleStyle.Render("vsxbrowse Help"))
	help.WriteString("\n")

	sections := []string{"Navigation", "Search", "Other"}
	for i, group := range r.keys.FullHelp() {
		help.WriteString(sectionStyle.Render(sections[i]))
		help.WriteString("\n")
		for _, b := range group {
			writeBinding(&help, b, keyStyle, descStyle)
		}
	}

	help.WriteString("\n")
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  More results load as the cursor nears the end of the list."))
	help.WriteString("\n")

	return help.String()
}

func writeBinding(sb *strings.Builder, b key.Binding, keyStyle, descStyle lipgloss.Style) {
	h := b.Help()
	sb.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(h.Key), descStyle.Render(h.Desc)))
}

// PagerOps shows long content in the ov pager
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps() *PagerOps {
	return &PagerOps{}
}

// SetProgram sets the program reference for terminal management
func (p *PagerOps) SetProgram(program *tea.Program) {
	p.program = program
}

// Show hands the terminal to ov until the user quits it
func (p *PagerOps) Show(content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// give ov time to leave the alternate screen
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
