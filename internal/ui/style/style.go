// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Rust   = lipgloss.Color("#CE422B")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)

// OutcomeIcon returns the icon and color used to report a goal outcome.
func OutcomeIcon(outcome string) (string, lipgloss.Color) {
	switch outcome {
	case "succeeded":
		return Check, Green
	case "failed":
		return Cross, Red
	case "skipped":
		return Circle, Slate
	default:
		return Dot, Yellow
	}
}
