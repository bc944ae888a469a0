package dashboard

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Base colors
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpBarStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	spinnerStyle  = lipgloss.NewStyle().Foreground(primaryColor)

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	buttonDisabledStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(mutedColor).
				Foreground(mutedColor).
				Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	statusStyles = map[Severity]lipgloss.Style{
		SeveritySuccess: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(successColor).
			Foreground(successColor).
			Padding(0, 1),
		SeverityWarning: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warningColor).
			Foreground(warningColor).
			Padding(0, 1),
		SeverityDanger: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Foreground(errorColor).
			Padding(0, 1),
	}

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().Bold(true)
	childMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	dimStyle       = lipgloss.NewStyle().Foreground(mutedColor)

	planStyle = lipgloss.NewStyle().Foreground(warningColor)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
)
