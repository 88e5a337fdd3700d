package styles

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Accent = lipgloss.Color("#D4A373")
	Ink    = lipgloss.Color("#EDE0D4")
	Faded  = lipgloss.Color("#7F7268")
	Leaf   = lipgloss.Color("#A7C957")
	Rust   = lipgloss.Color("#E76F51")
	Sky    = lipgloss.Color("#8ECAE6")
	Paper  = lipgloss.Color("#2B2118")
	Shelf  = lipgloss.Color("#3D3027")

	frame = lipgloss.RoundedBorder()
)

var (
	TitleStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true).MarginBottom(1)
	TextStyle  = lipgloss.NewStyle().Foreground(Ink)
	MutedStyle = lipgloss.NewStyle().Foreground(Faded)
	HelpStyle  = MutedStyle.Italic(true).MarginTop(1)

	// LabelStyle pads field names in the details card to one column.
	LabelStyle    = lipgloss.NewStyle().Foreground(Sky).Bold(true).Width(14)
	SelectedStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	CardStyle     = lipgloss.NewStyle().Border(frame).BorderForeground(Shelf).Padding(1, 2)

	StatusLoading = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	StatusSuccess = lipgloss.NewStyle().Foreground(Leaf).Bold(true)
	StatusError   = lipgloss.NewStyle().Foreground(Rust).Bold(true)

	ToastSuccessStyle = toast(Leaf)
	ToastErrorStyle   = toast(Rust)

	ButtonStyle         = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	DisabledButtonStyle = lipgloss.NewStyle().Foreground(Faded).Strikethrough(true)

	ChipStyle = lipgloss.NewStyle().Foreground(Paper).Background(Accent).Padding(0, 1)

	ActiveTabStyle   = lipgloss.NewStyle().Foreground(Accent).Background(Shelf).Padding(0, 2).Bold(true)
	InactiveTabStyle = lipgloss.NewStyle().Foreground(Faded).Padding(0, 2)

	InputStyle        = lipgloss.NewStyle().Border(frame).BorderForeground(Shelf).Padding(0, 1)
	FocusedInputStyle = InputStyle.BorderForeground(Accent)
)

func toast(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(frame).BorderForeground(c).Foreground(c).Padding(0, 1)
}

// Button renders a pager button, dimmed when disabled.
func Button(label string, enabled bool) string {
	if !enabled {
		return DisabledButtonStyle.Render(label)
	}
	return ButtonStyle.Render(label)
}
