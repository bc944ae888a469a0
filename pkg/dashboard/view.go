package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const helpText = `# colsync dashboard

Manage your collection hierarchy and relationships.

## Keys

| Key | Action |
|-----|--------|
| s   | Sync collections (asks for confirmation) |
| r   | Reset all parent-child relationships (asks for confirmation) |
| f   | Refresh the relation list |
| ?   | Toggle this help |
| q   | Quit |

Sync runs in the background on the server; progress is streamed live.
Quitting the dashboard does not stop a running sync.`

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.Width > 0 && (m.Width < MinWidth || m.Height < MinHeight) {
		return fmt.Sprintf("Terminal too small (need at least %dx%d)", MinWidth, MinHeight)
	}

	if m.HelpOpen {
		return m.helpView + "\n\n" + helpBarStyle.Render("esc/? close help · q quit")
	}

	if m.confirm != nil {
		return m.renderConfirmModal()
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	if m.Sync.HintVisible {
		sections = append(sections, hintStyle.Render(syncHintText))
	}
	if m.Sync.ProgressVisible {
		sections = append(sections, m.renderProgress())
	}

	sections = append(sections, m.renderStatuses()...)

	switch {
	case m.Refreshing:
		sections = append(sections, m.spin.View()+" Refreshing data...")
	case !m.Loaded:
		sections = append(sections, m.spin.View()+" Loading...")
	default:
		sections = append(sections, m.renderRelations())
	}

	sections = append(sections, helpBarStyle.Render("s sync · r reset · f refresh · ? help · q quit"))

	return strings.Join(sections, "\n\n") + "\n"
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Parent & Child Collection Relations")
	sub := subtitleStyle.Render(m.Shop)

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		m.renderButton("s", m.Sync), " ",
		m.renderButton("r", m.Reset),
	)

	header := title + "\n" + sub + "\n" + buttons

	if m.Plan.Name != "" {
		line := "Current plan: " + m.Plan.Name
		if m.planLink() != "" {
			line += "  " + planStyle.Render("Explore Plans: "+m.planLink())
		}
		header += "\n" + subtitleStyle.Render(line)
	}

	return header
}

// planLink returns the plan-selection URL, shown only on the Basic tier.
func (m Model) planLink() string {
	if m.AppURL == "" || !m.Plan.IsBasic() {
		return ""
	}
	return m.AppURL + "/plans?shop=" + m.Shop
}

func (m Model) renderButton(key string, st ActionState) string {
	label := fmt.Sprintf("[%s] %s", key, st.Label)
	if st.Loading {
		label += " " + m.spin.View()
	}
	if st.Disabled {
		return buttonDisabledStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func (m Model) renderProgress() string {
	pct := int(math.Round(m.Sync.Progress))
	return m.progressBar.ViewAs(m.Sync.Progress/100) + "\n" +
		subtitleStyle.Render(fmt.Sprintf("Syncing collections... %d%%", pct))
}

func (m Model) renderStatuses() []string {
	var out []string
	for _, st := range []Status{m.Sync.Status, m.Reset.Status} {
		if st.Show {
			out = append(out, statusStyles[st.Severity].Render(st.Message))
		}
	}
	if m.FlashError != "" {
		out = append(out, statusStyles[SeverityDanger].Render(m.FlashError))
	}
	return out
}

func (m Model) renderRelations() string {
	if len(m.Relations) == 0 {
		return "No Collections Found\n" +
			dimStyle.Render("No parent-child collections found. Press 's' to create collections.")
	}

	width := m.Width - 6
	if width < 20 {
		width = 60
	}

	var cards []string
	for _, rel := range m.Relations {
		var b strings.Builder
		title := rel.Parent.Title
		if title == "" {
			title = "Untitled Collection"
		}
		b.WriteString(cardTitleStyle.Render(ansi.Truncate(title, width, "…")))

		if len(rel.Children) == 0 {
			b.WriteString("\n" + dimStyle.Render("no child collections"))
		}
		for _, child := range rel.Children {
			childTitle := child.Title
			if childTitle == "" {
				childTitle = "Untitled Child"
			}
			line := fmt.Sprintf("• %s  %s",
				childTitle,
				childMetaStyle.Render(fmt.Sprintf("tag=%s redirect=%s", orNA(child.Tag), orNA(child.Redirect))),
			)
			b.WriteString("\n" + ansi.Truncate(line, width, "…"))
		}

		cards = append(cards, cardStyle.Render(b.String()))
	}

	return strings.Join(cards, "\n")
}

func (m Model) renderConfirmModal() string {
	width := 50
	if m.Width > 0 && m.Width-8 < width {
		width = m.Width - 8
	}

	body := modalTitleStyle.Render("Please Confirm") + "\n\n" +
		lipgloss.NewStyle().Width(width).Render(m.confirm.message) + "\n\n" +
		helpBarStyle.Render("enter/y Continue · esc/n Cancel")

	modal := modalStyle.Render(body)

	if m.Width > 0 && m.Height > 0 {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, modal)
	}
	return modal
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
