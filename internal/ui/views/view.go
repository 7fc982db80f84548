package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"vsxbrowse/internal/domain"
)

// ChromeHeight is the number of lines the view spends on everything but
// the list rows: title, search line, blank, loading row, status, help and
// the container's vertical padding
const ChromeHeight = 8

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width      int
	Height     int
	Items      []domain.Extension
	TotalSize  int
	HasMore    bool
	Loading    bool
	Pending    bool
	Cursor     int
	Offset     int
	ListHeight int
	Category   string
	Query      string
	Editing    bool
	QueryInput string // rendered text input while editing
	Spinner    string
	Status     string
	StatusErr  bool
	HelpView   string
	Now        time.Time
}

// Renderer handles all view rendering
type Renderer struct {
	styles    *Styles
	extRender *ExtensionRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:    styles,
		extRender: NewExtensionRenderer(styles),
	}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	innerWidth := termWidth - 4 // container padding

	content := &strings.Builder{}

	content.WriteString(r.renderTitle(state, innerWidth))
	content.WriteString("\n")
	content.WriteString(r.renderSearchLine(state))
	content.WriteString("\n\n")

	content.WriteString(r.renderList(state, innerWidth))

	// push the footer to the bottom
	used := strings.Count(content.String(), "\n") + 1
	available := state.Height - 2
	if available <= 0 {
		available = 22
	}
	if pad := available - used - 2; pad > 0 {
		content.WriteString(strings.Repeat("\n", pad))
	}

	content.WriteString("\n")
	content.WriteString(r.renderStatus(state))
	content.WriteString("\n")
	content.WriteString(state.HelpView)

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	return mainStyle.Render(content.String())
}

func (r *Renderer) renderTitle(state ViewState, width int) string {
	logo := r.styles.Title.Render("vsxbrowse")

	category := state.Category
	if category == "" {
		category = "All"
	}
	right := r.styles.Category.Render(fmt.Sprintf("[%s]", category))

	padding := width - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderSearchLine(state ViewState) string {
	if state.Editing {
		return state.QueryInput
	}
	if state.Query == "" {
		return r.styles.Dim.Render("Press / to search")
	}
	return r.styles.Prompt.Render("Search: ") + state.Query
}

// renderList renders the visible window of rows and, when the window
// reaches the end of what is loaded, the loading row
func (r *Renderer) renderList(state ViewState, width int) string {
	if len(state.Items) == 0 {
		switch {
		case state.Loading || state.Pending:
			return r.styles.StatusLoading.Render(state.Spinner + " Searching...")
		default:
			return r.styles.Dim.Render("No extensions found.")
		}
	}

	height := state.ListHeight
	if height < 1 {
		height = 1
	}
	start := min(state.Offset, len(state.Items))
	end := min(start+height, len(state.Items))

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		lines = append(lines, r.extRender.RenderRow(state.Items[i], i == state.Cursor, width, state.Now))
	}

	if end == len(state.Items) {
		if state.HasMore || state.Loading {
			lines = append(lines, r.styles.StatusLoading.Render(state.Spinner+" Loading more..."))
		}
	} else {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", len(state.Items)-end)))
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) renderStatus(state ViewState) string {
	count := fmt.Sprintf("%d of %d", len(state.Items), state.TotalSize)
	if state.Pending {
		count += " " + state.Spinner
	}
	line := r.styles.Status.Render(count)
	if state.Status != "" {
		style := r.styles.Status
		if state.StatusErr {
			style = r.styles.StatusError
		}
		line += "  " + style.Render(state.Status)
	}
	return line
}
