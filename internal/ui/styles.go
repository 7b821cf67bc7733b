package ui

import "github.com/charmbracelet/lipgloss"

// Color palette: one lime accent, grays for structure.
const (
	ColorLime     = "154" // Primary accent
	ColorLimeDim  = "106" // Inactive chips, borders
	ColorWhite    = "255" // Headings
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Card borders, separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Highlights, score badges
	ColorBlack    = "16"
)

// Styles holds all UI styles.
type Styles struct {
	// Text styles
	Header  lipgloss.Style
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Label   lipgloss.Style
	Active  lipgloss.Style

	// Mark styles the matched runs inside highlighted fields.
	Mark lipgloss.Style

	// Badges and chips
	Badge      lipgloss.Style
	Score      lipgloss.Style
	Chip       lipgloss.Style
	ChipActive lipgloss.Style

	// Panel/layout styles
	Card   lipgloss.Style
	Panel  lipgloss.Style
	Banner lipgloss.Style
}

// DefaultStyles returns styled components for TUI mode.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),

		Mark: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorBlack)).
			Background(lipgloss.Color(ColorYellow)),

		Badge: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Score: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorYellow)),
		Chip: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorGray)).
			Padding(0, 1),
		ChipActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorBlack)).
			Background(lipgloss.Color(ColorLime)).
			Padding(0, 1),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorLimeDim)).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorRed)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(ColorRed)).
			PaddingLeft(1),
	}
}

// NoColorStyles returns unstyled components for plain mode.
// Layout survives; only color and emphasis are dropped.
func NoColorStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle(),
		Title:      lipgloss.NewStyle(),
		Success:    lipgloss.NewStyle(),
		Warning:    lipgloss.NewStyle(),
		Error:      lipgloss.NewStyle(),
		Dim:        lipgloss.NewStyle(),
		Label:      lipgloss.NewStyle(),
		Active:     lipgloss.NewStyle(),
		Mark:       lipgloss.NewStyle(),
		Badge:      lipgloss.NewStyle(),
		Score:      lipgloss.NewStyle(),
		Chip:       lipgloss.NewStyle().Padding(0, 1),
		ChipActive: lipgloss.NewStyle().Padding(0, 1),
		Card:       lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		Panel:      lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		Banner:     lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
