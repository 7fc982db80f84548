package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"vsxbrowse/internal/domain"
)

// RenderDetails renders the full record of one extension for the pager
func (r *Renderer) RenderDetails(ext domain.Extension, now time.Time) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(ext.Title()))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("%s %s\n", r.styles.DetailsLabel.Render(label), value))
	}

	field("Identifier", ext.Key().String())
	version := ext.Version
	if version != "" && ext.IsPreRelease() {
		version += " " + r.styles.PreRelease.Render("(pre-release)")
	}
	field("Version", version)
	if published, ok := ext.PublishedAt(); ok {
		field("Published", fmt.Sprintf("%s (%s)", published.Format("2006-01-02 15:04"), humanize.RelTime(published, now, "ago", "from now")))
	}
	field("Downloads", humanize.Comma(int64(ext.DownloadCount)))
	if ext.AverageRating != nil {
		field("Rating", fmt.Sprintf("%.1f / 5", *ext.AverageRating))
	}
	field("Registry", ext.URL)
	field("Download", ext.Files.Download)

	if ext.Description != "" {
		b.WriteString("\n")
		b.WriteString(ext.Description)
		b.WriteString("\n")
	}

	return b.String()
}
