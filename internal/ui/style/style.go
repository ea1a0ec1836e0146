// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/ferry/internal/core/domain"
)

// Brand Colors.
var (
	Harbor = lipgloss.Color("#2563EB")
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
	Skip    = "~"
	Dot     = "●"
)

// ForOutcome returns the icon and color used to render an outcome.
func ForOutcome(kind domain.OutcomeKind) (string, lipgloss.Color) {
	switch kind {
	case domain.OutcomeSuccess:
		return Check, Green
	case domain.OutcomeDeploySkipped:
		return Skip, Slate
	case domain.OutcomeDeployFailed:
		return Warning, Yellow
	default:
		return Cross, Red
	}
}
