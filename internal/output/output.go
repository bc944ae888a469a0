// Package output provides styled terminal output helpers (success, error,
// warning, relation formatting) using lipgloss.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/colsync/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("WARNING: " + fmt.Sprintf(format, args...)))
}

// Info prints an informational message
func Info(format string, args ...interface{}) {
	fmt.Println(infoStyle.Render(fmt.Sprintf(format, args...)))
}

// Relations renders the admin view as text: one block per parent with its
// children and their routing metadata.
func Relations(view *models.AdminView, shop string) string {
	var b strings.Builder

	if len(view.Relations) == 0 {
		b.WriteString("No parent-child collections found.\n")
		b.WriteString(subtleStyle.Render("Run 'colsync sync' to create collections."))
		b.WriteString("\n")
		return b.String()
	}

	for i, rel := range view.Relations {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(orUntitled(rel.Parent.Title)))
		b.WriteString("  ")
		b.WriteString(subtleStyle.Render(adminCollectionURL(shop, rel.Parent.ID)))
		b.WriteString("\n")

		if len(rel.Children) == 0 {
			b.WriteString(subtleStyle.Render("  (no child collections)"))
			b.WriteString("\n")
			continue
		}
		for _, child := range rel.Children {
			b.WriteString(fmt.Sprintf("  - %s  %s %s\n",
				orUntitled(child.Title),
				tagStyle.Render("tag="+orNA(child.Tag)),
				subtleStyle.Render("redirect="+orNA(child.Redirect)),
			))
		}
	}

	if view.CurrentPlan.Name != "" {
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("Current plan: " + view.CurrentPlan.Name))
		b.WriteString("\n")
	}

	return b.String()
}

func adminCollectionURL(shop, id string) string {
	return fmt.Sprintf("https://%s/admin/collections/%s", shop, id)
}

func orUntitled(title string) string {
	if title == "" {
		return "Untitled Collection"
	}
	return title
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
