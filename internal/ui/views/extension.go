package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"vsxbrowse/internal/domain"
)

// ExtensionRenderer handles rendering of extension rows
type ExtensionRenderer struct {
	styles *Styles
}

// NewExtensionRenderer creates a new extension renderer
func NewExtensionRenderer(styles *Styles) *ExtensionRenderer {
	return &ExtensionRenderer{styles: styles}
}

// RenderRow renders one extension on a single line no wider than width
func (r *ExtensionRenderer) RenderRow(ext domain.Extension, isSelected bool, width int, now time.Time) string {
	bg := lipgloss.NewStyle()
	if isSelected {
		bg = r.styles.SelectionBg
	}
	with := func(s lipgloss.Style) lipgloss.Style {
		if isSelected {
			return s.Background(bg.GetBackground())
		}
		return s
	}

	cursor := "  "
	if isSelected {
		cursor = "▸ "
	}

	parts := []string{
		bg.Render(cursor),
		with(r.styles.Name).Render(ext.Title()),
		bg.Render(" "),
		with(r.styles.Identity).Render(ext.Key().String()),
	}

	if ext.Version != "" {
		parts = append(parts, bg.Render(" "), with(r.styles.Version).Render("v"+ext.Version))
		if ext.IsPreRelease() {
			parts = append(parts, bg.Render(" "), with(r.styles.PreRelease).Render("[pre-release]"))
		}
	}

	parts = append(parts, bg.Render("  "), with(r.styles.Downloads).Render("↓"+FormatDownloads(ext.DownloadCount)))

	if ext.AverageRating != nil {
		parts = append(parts, bg.Render("  "), with(r.styles.Rating).Render(fmt.Sprintf("★%.1f", *ext.AverageRating)))
	}

	if age := FormatAge(ext, now); age != "" {
		parts = append(parts, bg.Render("  "), with(r.styles.Age).Render(age))
	}

	if desc := oneLine(ext.Description); desc != "" {
		parts = append(parts, bg.Render("  "), with(r.styles.Dim).Render(desc))
	}

	line := strings.Join(parts, "")
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

// FormatDownloads renders a download count the way the registry site does
func FormatDownloads(n int) string {
	if n < 1000 {
		return humanize.Comma(int64(n))
	}
	value, prefix := humanize.ComputeSI(float64(n))
	return humanize.FtoaWithDigits(value, 1) + strings.ToUpper(prefix)
}

// FormatAge renders the publish time relative to now
func FormatAge(ext domain.Extension, now time.Time) string {
	published, ok := ext.PublishedAt()
	if !ok {
		return ""
	}
	return humanize.RelTime(published, now, "ago", "from now")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
