package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Accent     = lipgloss.Color("#66C0F4")
	SlateDark  = lipgloss.Color("#1B2838")
	SlateLight = lipgloss.Color("#2A475E")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Yellow     = lipgloss.Color("#F59E0B")
	Red        = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Accent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Yellow)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(SlateLight).
			Bold(true).
			Padding(0, 1)
)

// Checkbox characters
const (
	CheckedChar   = "[x]"
	UncheckedChar = "[ ]"
)

// Row styles
var (
	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight)

	NormalRowStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	SentinelRowStyle = lipgloss.NewStyle().
				Foreground(DimGray).
				Italic(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Accent)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Accent)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true)
)

// Summary box used by headless output
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)
)

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 3 {
		return string(r[:min(width, len(r))])
	}
	if len(r) > width-3 {
		r = r[:width-3]
	}
	return string(r) + "..."
}

// Checkbox renders a checkbox for the given state
func Checkbox(checked bool) string {
	if checked {
		return SuccessStyle.Render(CheckedChar)
	}
	return DimStyle.Render(UncheckedChar)
}

// RenderHelp renders key/description pairs on one line
func RenderHelp(pairs ...[2]string) string {
	out := ""
	for i, p := range pairs {
		if i > 0 {
			out += "  "
		}
		out += HelpKeyStyle.Render(p[0]) + " " + HelpDescStyle.Render(p[1])
	}
	return out
}

// SpinnerFrames are the frames of the plain-terminal spinner
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
