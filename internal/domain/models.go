package domain

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/text/cases"
)

// Extension is one registry entry as returned by the search endpoint
type Extension struct {
	URL           string   `json:"url"`
	Files         Files    `json:"files"`
	Name          string   `json:"name"`
	Namespace     string   `json:"namespace"`
	Version       string   `json:"version"`
	Timestamp     string   `json:"timestamp,omitempty"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	DownloadCount int      `json:"downloadCount"`
	DisplayName   string   `json:"displayName,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// Files holds the resource links of an extension
type Files struct {
	Download string `json:"download,omitempty"`
	Icon     string `json:"icon,omitempty"`
}

// Identity uniquely identifies an extension
type Identity struct {
	Namespace string
	Name      string
}

func (id Identity) String() string {
	return id.Namespace + "." + id.Name
}

// Key returns the (namespace, name) pair used as the rendering key
func (e Extension) Key() Identity {
	return Identity{Namespace: e.Namespace, Name: e.Name}
}

// Title is the display name, falling back to the technical name
func (e Extension) Title() string {
	if strings.TrimSpace(e.DisplayName) != "" {
		return e.DisplayName
	}
	return e.Name
}

// PublishedAt parses the registry timestamp
func (e Extension) PublishedAt() (time.Time, bool) {
	if e.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsPreRelease reports a semver pre-release tag such as 1.3.0-next.4
func (e Extension) IsPreRelease() bool {
	v, err := semver.NewVersion(e.Version)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// Categories are the registry's extension categories, in display order
var Categories = []string{
	"Programming Languages",
	"Snippets",
	"Linters",
	"Themes",
	"Debuggers",
	"Formatters",
	"Keymaps",
	"SCM Providers",
	"Other",
	"Extension Packs",
	"Language Packs",
	"Data Science",
	"Machine Learning",
	"Visualization",
	"Notebooks",
	"Education",
	"Testing",
}

// LookupCategory resolves a user-typed category name case-insensitively.
// The empty string means all categories.
func LookupCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", true
	}
	fold := cases.Fold()
	want := fold.String(name)
	for _, c := range Categories {
		if fold.String(c) == want {
			return c, true
		}
	}
	return "", false
}
